package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks service assertions minted by Mint against the caller's public key.
type Verifier struct {
	key      *rsa.PublicKey
	audience string
}

func NewVerifier(key *rsa.PublicKey, audience string) *Verifier {
	return &Verifier{key: key, audience: audience}
}

// LoadVerifier reads a PEM public key (PKIX or certificate) from path.
func LoadVerifier(path, audience string) (*Verifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return NewVerifier(key, audience), nil
}

func (v *Verifier) Verify(token string) (*AssertionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	parsed, err := jwt.ParseWithClaims(token, &AssertionClaims{}, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*AssertionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid assertion")
	}
	if claims.Issuer == "" || claims.Issuer != claims.Subject {
		return nil, errors.New("assertion issuer and subject must name the calling service")
	}
	return claims, nil
}

// VerifyServiceToken satisfies the middleware's service token contract.
func (v *Verifier) VerifyServiceToken(token string) (string, error) {
	claims, err := v.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Issuer, nil
}
