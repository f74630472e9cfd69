package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *Keys) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	keys, err := NewKeys(pubPEM)
	require.NoError(t, err)
	return priv, keys
}

func signToken(t *testing.T, priv *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	priv, keys := testKeys(t)

	signed := signToken(t, priv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"admin"},
	})

	claims, err := keys.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("support"))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	priv, keys := testKeys(t)

	signed := signToken(t, priv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := keys.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	_, keys := testKeys(t)
	otherPriv, _ := testKeys(t)

	signed := signToken(t, otherPriv, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := keys.ValidateToken(signed)
	assert.Error(t, err)
}

func TestNewKeysRejectsGarbage(t *testing.T) {
	_, err := NewKeys([]byte("not a pem block"))
	assert.Error(t, err)
}
