package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token resolution failures. Callers outside this package should treat all
// three as unauthorized; the distinction is kept for logging.
var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

var errUnexpectedAlg = errors.New("unexpected signing method")

// TokenCodec issues and resolves HS256 bearer tokens.
// It is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec creates a codec signing with secret.
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is empty")
	}
	c := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
		// Expiry is checked against the injected clock below, without leeway.
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for subject that expires ttl from now.
// The expiry has second precision, so a zero ttl yields a token that is already expired.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject is empty")
	}
	now := c.now()
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: exp,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp.Time, nil
}

// Resolve verifies the signature, then the expiry, and returns the subject.
func (c *TokenCodec) Resolve(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := c.parser.ParseWithClaims(token, claims, c.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return "", ErrInvalidSignature
		}
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return "", ErrMalformed
	}
	if !c.now().Before(claims.ExpiresAt.Time) {
		return "", ErrExpired
	}
	return claims.Subject, nil
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("%w: %v", errUnexpectedAlg, t.Header["alg"])
	}
	return c.secret, nil
}
