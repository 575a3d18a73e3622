package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// State is the payload round-tripped through Google's redirect as the
// OAuth state query parameter. The JSON field names are wire format and
// must not change.
type State struct {
	SID   string `json:"SID"`
	Phone string `json:"phone"`
}

// Encode serializes the state as JSON and base64url-encodes it so the
// result is safe to embed in a URL query parameter.
func (s State) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// DecodeState reverses Encode. It returns ErrStateDecoding for anything
// that is not a state produced by this service.
func DecodeState(encoded string) (State, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrStateDecoding, err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrStateDecoding, err)
	}
	return s, nil
}
