// Package logging provides slog helpers used across the codebase:
// canonical attribute keys, attribute constructors, and PII-safe
// representations of phone numbers and credentials.
//
// Phone numbers are never logged raw; they are hashed so log entries can
// be correlated per user without exposing the number itself. Tokens are
// reduced to a length indicator.
package logging
