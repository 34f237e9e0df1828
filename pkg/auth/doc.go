// Package auth provides password hashing and bearer-token issuance for
// the TaskHub API.
//
// # Password hashing
//
// Passwords are hashed with bcrypt, salted per call:
//
//	hasher := auth.NewPasswordHasher(0) // bcrypt.DefaultCost
//	hash, err := hasher.Hash("s3cret")
//	ok := hasher.Check("s3cret", hash)
//
// # Tokens
//
// Access tokens are stateless HS256 JWTs carrying only the subject user
// ID and an expiry. Verification is a signature check plus a strict
// expiry comparison; there is no revocation list, by design - the API
// has no logout flow.
//
//	issuer := auth.NewTokenIssuer([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
//	tok, err := issuer.Issue(user.ID)
//	userID, err := issuer.Verify(tok) // errors wrap auth.ErrInvalidToken
//
// # Request context
//
// After the middleware resolves a token, handlers read the authenticated
// user through auth.Context stored under contextkeys.AuthKey. The
// resolved user ID is the only scoping key for storage access; user IDs
// supplied in request bodies are never trusted.
package auth
