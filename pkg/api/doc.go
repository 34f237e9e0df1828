// Package api provides the HTTP REST API server for the TaskHub task manager.
//
// # Overview
//
// This package implements the HTTP layer: user registration and login with
// bearer-token authentication, per-user task CRUD, and the public health and
// info endpoints.
//
// # Architecture
//
// The API is built on gorilla/mux and organized into handler groups:
//
//   - Authentication: registration, form-encoded login, current-user profile
//   - Tasks: create, list (optionally paginated), get, merge-patch, delete
//   - Service: root banner, API info, health with storage ping
//
// All /api routes except register, login and health sit behind the bearer
// token middleware. Task handlers scope every storage call to the resolved
// user; a task owned by someone else reads as missing.
//
// # Key Types
//
// Server is the main API server:
//
//	server := api.NewServer(store, hasher, tokens, logger, metrics)
//	http.ListenAndServe(":8080", server)
//
// Store is the persistence contract implemented by pkg/storage's
// filesystem and sqlite backends.
package api
