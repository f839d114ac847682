package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"FormatConverter/internal/domain"
)

const (
	// ConvertAction scopes tokens embedded in article pages.
	ConvertAction = "ap_converter"

	DefaultTokenTTL = 12 * time.Hour
	issuer          = "format-converter"
)

var errInvalidToken = domain.AuthError("Security check failed")

// Tokens issues and verifies short-lived, action-scoped request tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token authority; the secret must not be empty.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token valid for action until the TTL elapses.
func (t *Tokens) Issue(action string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   action,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns an auth error unless token was issued by us for action and is unexpired.
func (t *Tokens) Verify(token, action string) error {
	if token == "" {
		return errInvalidToken
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(action),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return &domain.ConversionError{Kind: domain.KindAuth, Message: "Security check failed", Err: err}
	}
	return nil
}
