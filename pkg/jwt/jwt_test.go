package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	issuer := NewIssuer("secret")

	token, err := issuer.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	userID, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParse_Expired(t *testing.T) {
	issuer := NewIssuer("secret")
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewIssuer("secret").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewIssuer("one").GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewIssuer("two").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	_, err := NewIssuer("secret").ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret").ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_FallsBackToSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-9",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	userID, err := NewIssuer("secret").ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
}
