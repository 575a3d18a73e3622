// Package auth implements the Google account linking lifecycle for
// messaging-bot users.
//
// A user is identified by phone number. Linking starts with AuthURL,
// which turns an identity token into a Google consent URL carrying the
// session and phone as an opaque state parameter. When Google redirects
// back, Exchange redeems the authorization code and persists the refresh
// token for the phone recovered from the state. From then on Authorize
// reconstitutes an authorized HTTP client from the stored refresh token
// without prompting the user again; refresh tokens rotated by Google
// during silent refresh are persisted transparently.
//
// Every Authorize call builds its own token source. Nothing in this
// package mutates shared credential state, so concurrent flows for
// different users cannot interfere.
package auth
