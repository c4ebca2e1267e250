package auth

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGate_EmptySecret(t *testing.T) {
	_, err := NewGate("")
	assert.Error(t, err)
}

func TestIssueAndAuthenticate(t *testing.T) {
	gate, err := NewGate("test-secret")
	require.NoError(t, err)

	token, err := gate.Issue("user-42")
	require.NoError(t, err)

	userID, err := gate.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestAuthenticate_Missing(t *testing.T) {
	gate, _ := NewGate("test-secret")

	_, err := gate.Authenticate("")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestAuthenticate_Tampered(t *testing.T) {
	gate, _ := NewGate("test-secret")
	token, err := gate.Issue("user-42")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{User: UserClaim{ID: "user-7"}}).SignedString([]byte("other"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// payload of another user, signature of the original
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = gate.Authenticate(tampered)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	issuer, _ := NewGate("secret-a")
	verifier, _ := NewGate("secret-b")

	token, err := issuer.Issue("user-42")
	require.NoError(t, err)

	_, err = verifier.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticate_Malformed(t *testing.T) {
	gate, _ := NewGate("test-secret")

	_, err := gate.Authenticate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticate_RejectsNoneAlgorithm(t *testing.T) {
	gate, _ := NewGate("test-secret")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{User: UserClaim{ID: "user-42"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = gate.Authenticate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticate_MissingUserID(t *testing.T) {
	gate, _ := NewGate("test-secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = gate.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
