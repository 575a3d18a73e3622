package auth

import "errors"

var (
	// ErrInvalidIdentity indicates the identity token could not be
	// validated. The caller should restart the flow with a fresh token.
	ErrInvalidIdentity = errors.New("invalid identity token")

	// ErrStateDecoding indicates the state parameter returned by the
	// provider does not decode to the structure this service encoded,
	// which means tampering or an expired flow.
	ErrStateDecoding = errors.New("malformed state parameter")

	// ErrTokenExchange indicates the provider rejected the authorization
	// code (expired, reused, or malformed). The user must re-initiate
	// the consent flow.
	ErrTokenExchange = errors.New("authorization code exchange failed")

	// ErrMissingAuthorization indicates no refresh token is stored for
	// the user. The caller should send the user through the
	// authorization flow.
	ErrMissingAuthorization = errors.New("no refresh token stored for user")

	// ErrMissingIdentifier indicates an empty phone number reached an
	// operation that requires one. Webhook payloads from the messaging
	// provider can be malformed, so this is checked explicitly.
	ErrMissingIdentifier = errors.New("phone number is empty or undefined")
)
