// Package token issues and validates the signed bearer tokens handed out at
// login. A token carries only the subject and its validity window; roles are
// looked up again on every request.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HMAC key NewCodec accepts.
const MinKeyLength = 32

var (
	// ErrMalformed is returned when the token is not a structurally valid JWT
	ErrMalformed = errors.New("malformed token")

	// ErrInvalidSignature is returned when the signature does not verify
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrExpired is returned when the signature verifies but the token has lapsed
	ErrExpired = errors.New("token expired")

	// ErrInvalidConfig is returned by NewCodec for an unusable key or TTL
	ErrInvalidConfig = errors.New("invalid token configuration")
)

// Token is an issued bearer token. Value is the compact serialization sent
// to the client.
type Token struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Value     string
}

// Config holds the process-wide signing settings.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Codec signs and verifies HS256 tokens. It is immutable after construction
// and safe for concurrent use.
type Codec struct {
	key    []byte
	ttl    time.Duration
	method jwt.SigningMethod
}

// NewCodec validates cfg and returns a Codec. Errors here are startup errors.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < MinKeyLength {
		return nil, fmt.Errorf("%w: signing key must be at least %d bytes", ErrInvalidConfig, MinKeyLength)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidConfig, cfg.TTL)
	}
	if cfg.TTL < time.Second {
		return nil, fmt.Errorf("%w: ttl must be at least one second, got %s", ErrInvalidConfig, cfg.TTL)
	}
	key := make([]byte, len(cfg.Secret))
	copy(key, cfg.Secret)
	return &Codec{
		key:    key,
		ttl:    cfg.TTL,
		method: jwt.SigningMethodHS256,
	}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a token for subject valid from now until now+TTL.
// Timestamps have second precision.
func (c *Codec) Issue(subject string, now time.Time) (*Token, error) {
	if subject == "" {
		return nil, errors.New("subject is required")
	}
	iat := now.Truncate(time.Second)
	exp := iat.Add(c.ttl).Truncate(time.Second)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Subject:   subject,
		IssuedAt:  iat,
		ExpiresAt: exp,
		Value:     signed,
	}, nil
}

// Validate checks tokenString at time now and returns its subject.
// The signature is verified before any claim is evaluated; a token with a bad
// signature reports ErrInvalidSignature even when it is also expired.
// A token is expired when now >= exp.
func (c *Codec) Validate(tokenString string, now time.Time) (string, error) {
	if tokenString == "" {
		return "", ErrMalformed
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key, nil
	})
	if err != nil {
		return "", classify(err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	return claims.Subject, nil
}

// classify maps jwt errors onto this package's taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
