package auth

import "time"

// User represents a registered account. The password hash never leaves
// the server: it is excluded from JSON serialization and only compared
// through PasswordHasher.Check.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Context is the request-scoped authentication state injected by the
// auth middleware after a bearer token has been verified and its subject
// resolved to a stored user.
type Context struct {
	User *User
}

// UserID returns the authenticated user's ID, or "" when unauthenticated.
func (c *Context) UserID() string {
	if c == nil || c.User == nil {
		return ""
	}
	return c.User.ID
}
