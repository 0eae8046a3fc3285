package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the identity carried by a signed-in visitor's id token.
type UserClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserTokens issues and parses the HS256 id tokens the front end accepts as a session.
type UserTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewUserTokens(secret string, ttl time.Duration) *UserTokens {
	return &UserTokens{secret: []byte(secret), ttl: ttl}
}

func (s *UserTokens) Issue(uid, email string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("%w: uid is required", ErrConfiguration)
	}
	now := time.Now()
	claims := UserClaims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *UserTokens) Parse(token string) (*UserClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &UserClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*UserClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UID == "" {
		return nil, errors.New("token has no uid")
	}
	return claims, nil
}

// ParseAuthContext satisfies the middleware's user token contract.
func (s *UserTokens) ParseAuthContext(token string) (string, string, error) {
	claims, err := s.Parse(token)
	if err != nil {
		return "", "", err
	}
	return claims.UID, claims.Email, nil
}
