// Package store persists bot user records keyed by phone number.
//
// A record holds exactly one credential: the Google OAuth refresh token
// obtained when the user linked their account. Records are created on the
// first successful token exchange and updated whenever Google rotates the
// refresh token; they are never deleted here.
//
// Two implementations are provided:
//   - Postgres: the production store, backed by a bounded pgx connection
//     pool with goose-managed schema migrations
//   - Memory: an in-process store for tests and local development
package store
