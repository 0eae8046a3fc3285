package auth

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AssertionLifetime is fixed; every minted or refreshed assertion expires this long after issue.
const AssertionLifetime = 3600 * time.Second

var (
	ErrKeyLoad       = errors.New("signing key could not be loaded")
	ErrConfiguration = errors.New("invalid credential configuration")
)

// AssertionClaims is the claim set the gateway checks on every service-to-service call.
type AssertionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type serviceAccountKeyfile struct {
	Type         string `json:"type"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
}

// Credentials is a signed assertion that can re-sign itself. Safe for concurrent use.
type Credentials struct {
	key      *rsa.PrivateKey
	keyID    string
	identity string
	audience string
	now      func() time.Time

	mu       sync.Mutex
	token    string
	issuedAt time.Time
	expiry   time.Time
}

// Mint loads the private key at keyPath and signs a fresh assertion for identity -> audience.
// The key file is either a service-account JSON keyfile or a PEM encoded RSA private key.
func Mint(keyPath, identity, audience string) (*Credentials, error) {
	return mint(keyPath, identity, audience, time.Now)
}

func mint(keyPath, identity, audience string, now func() time.Time) (*Credentials, error) {
	identity = strings.TrimSpace(identity)
	audience = strings.TrimSpace(audience)
	if identity == "" {
		return nil, fmt.Errorf("%w: service identity is empty", ErrConfiguration)
	}
	if audience == "" {
		return nil, fmt.Errorf("%w: audience is empty", ErrConfiguration)
	}
	key, keyID, err := loadSigningKey(keyPath)
	if err != nil {
		return nil, err
	}
	c := &Credentials{key: key, keyID: keyID, identity: identity, audience: audience, now: now}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

func loadSigningKey(path string) (*rsa.PrivateKey, string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, "", fmt.Errorf("%w: key path is empty", ErrKeyLoad)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}

	pemBytes := raw
	keyID := ""
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "{") {
		var kf serviceAccountKeyfile
		if err := json.Unmarshal(raw, &kf); err != nil {
			return nil, "", fmt.Errorf("%w: parse keyfile: %v", ErrKeyLoad, err)
		}
		if kf.PrivateKey == "" {
			return nil, "", fmt.Errorf("%w: keyfile has no private_key", ErrKeyLoad)
		}
		pemBytes = []byte(kf.PrivateKey)
		keyID = kf.PrivateKeyID
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return key, keyID, nil
}

// Refresh re-signs the assertion with issued-at = now.
func (c *Credentials) Refresh() error {
	now := c.now().Truncate(time.Second)
	exp := now.Add(AssertionLifetime)
	claims := AssertionClaims{
		Email: c.identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.identity,
			Subject:   c.identity,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if c.keyID != "" {
		t.Header["kid"] = c.keyID
	}
	signed, err := t.SignedString(c.key)
	if err != nil {
		return fmt.Errorf("sign assertion: %w", err)
	}

	c.mu.Lock()
	c.token, c.issuedAt, c.expiry = signed, now, exp
	c.mu.Unlock()
	return nil
}

func (c *Credentials) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Credentials) IssuedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issuedAt
}

func (c *Credentials) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiry
}

func (c *Credentials) Expired() bool {
	return !c.now().Before(c.ExpiresAt())
}

func (c *Credentials) Identity() string { return c.identity }

func (c *Credentials) Audience() string { return c.audience }
