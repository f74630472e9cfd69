package auth

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

// ClaimsKey is the request-context key under which the authentication
// middleware stores the verified claims.
const ClaimsKey ctxKey = 1

type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Keys holds the public key used to verify tokens minted by the user service.
type Keys struct {
	pubKey *rsa.PublicKey
}

func NewKeys(pubKeyPEM []byte) (*Keys, error) {
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing auth public key: %w", err)
	}
	return &Keys{pubKey: pubKey}, nil
}

// ValidateToken verifies the signature and returns the embedded claims.
func (k *Keys) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return k.pubKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// HasRole reports whether the claims carry the given role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
