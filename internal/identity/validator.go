// Package identity validates the signed identity tokens minted by the
// messaging webhook layer. A valid token carries the user's phone number
// as a claim; nothing else about the token is interpreted here.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// signed with the wrong key, or missing the phone claim.
var ErrInvalidToken = errors.New("invalid identity token")

// Claims extends the registered JWT claims with the phone number of the
// messaging-bot user the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	Phone string `json:"phone"`
}

// Validator recovers the phone claim from an identity token.
type Validator interface {
	Validate(token string) (phone string, err error)
}

// HMACValidator validates HS256-signed identity tokens with a shared secret.
type HMACValidator struct {
	secret []byte
}

// NewHMACValidator returns a validator using the given shared secret.
func NewHMACValidator(secret []byte) *HMACValidator {
	return &HMACValidator{secret: secret}
}

// Validate parses and verifies the token and returns its phone claim.
func (v *HMACValidator) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Phone == "" {
		return "", fmt.Errorf("%w: missing phone claim", ErrInvalidToken)
	}

	return claims.Phone, nil
}

// GenerateToken mints an identity token for phone, signed with secretKey
// and valid for validityDuration. Used by the webhook layer and by tests.
func GenerateToken(phone string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Phone: phone,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
