package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Claims is the signed token payload: {"user":{"id":"..."}}.
// No expiry is set or enforced.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// UserClaim identifies the token holder
type UserClaim struct {
	ID string `json:"id"`
}

// Gate issues and verifies bearer tokens with a process-wide shared secret
type Gate struct {
	secret []byte
}

// NewGate creates a gate. The secret must be non-empty.
func NewGate(secret string) (*Gate, error) {
	if secret == "" {
		return nil, errors.New("auth secret is empty")
	}
	return &Gate{secret: []byte(secret)}, nil
}

// Issue signs a token for userID
func (g *Gate) Issue(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		User: UserClaim{ID: userID},
	})

	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies token and returns the embedded user id
func (g *Gate) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrMissingCredential
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid || claims.User.ID == "" {
		return "", ErrInvalidCredential
	}

	return claims.User.ID, nil
}
