// Package server implements the reference REST collaborator used during development.
//
// # Routes
//
// Everything is mounted under /api:
//   - POST /auth/signup and POST /auth/login exchange credentials for a bearer token
//   - GET /{dataset} lists the caller's records, newest first, as {"records": [...]}
//   - POST /{dataset} creates a record and responds 201 with {"record": {...}}
//   - PUT /{dataset}/{id} replaces a record and responds with {"record": {...}}
//   - DELETE /{dataset}/{id} removes a record and responds 200 with {}
//
// Record ids are SQLite serials and appear on the wire as numbers. A record owned by another
// user answers 404 exactly like a missing one. Errors are JSON bodies of the form {"error": "..."}.
//
// # Authentication
//
// Passwords are hashed with bcrypt. Tokens are HS256 JWTs carrying the account id in "sub"
// and its email in "email"; [Server.RequireUser] resolves the account for dataset routes.
//
// # Middleware
//
// [Middleware] wraps an [http.Handler]. The router applies chi's Recoverer and [RequestLogger].
package server
