// Package token issues and verifies the signed credentials carried in the
// session cookie.
//
// Tokens are HS256 JWTs holding the user id plus iat/exp claims. The server
// keeps no session table: a token is trusted if and only if it verifies
// against the signing secret and its expiry has not elapsed.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is the lifetime of an issued token.
	DefaultTTL = 24 * time.Hour

	// DefaultSecret is the fallback signing secret used when JWT_SECRET is not
	// set. It is public and offers no protection: any deployment reachable by
	// real users must override it.
	DefaultSecret = "estoque-insecure-default-secret"
)

// ErrInvalidToken is returned for every decode failure. Malformed, forged and
// expired tokens are deliberately indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// Payload is the identity claim embedded in a token.
type Payload struct {
	UserID string `json:"userId"`
}

// Claims is the signed body of a token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Payload returns the identity part of the claims.
func (c *Claims) Payload() Payload {
	return Payload{UserID: c.UserID}
}

// Codec signs and verifies tokens with a single shared secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now for both issuing and verification.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec returns a Codec bound to secret.
func NewCodec(secret []byte, opts ...Option) *Codec {
	c := &Codec{
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for payload, valid from now until now+TTL.
func (c *Codec) Issue(payload Payload) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: payload.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns its claims. Any failure yields
// ErrInvalidToken.
func (c *Codec) Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}
