package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName      = "fc-faces-auth"
	DefaultTokenTTL = 24 * time.Hour

	// DefaultStaticToken is the shared token used when AUTH_SECRET is unset.
	DefaultStaticToken = "fc-faces-secret-token"

	imageTokenType = "image"
)

// TokenIssuer mints and checks the token carried in the auth cookie.
type TokenIssuer interface {
	Issue() (string, time.Time, error)
	Validate(token string) error
}

// JWTIssuer signs short-lived HS256 tokens scoped to image access.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	if now != nil {
		i.now = now
	}
	return i
}

func (i *JWTIssuer) Issue() (string, time.Time, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token id: %w", err)
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"jti": id.String(),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"typ": imageTokenType,
	}
	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return encoded, expiresAt, nil
}

func (i *JWTIssuer) Validate(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	if tokenType, _ := claims["typ"].(string); tokenType != imageTokenType {
		return ErrInvalidToken
	}
	return nil
}

// StaticIssuer hands out one fixed shared token.
type StaticIssuer struct {
	token string
	ttl   time.Duration
	now   func() time.Time
}

func NewStaticIssuer(token string, ttl time.Duration) *StaticIssuer {
	if strings.TrimSpace(token) == "" {
		token = DefaultStaticToken
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &StaticIssuer{
		token: token,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (i *StaticIssuer) Issue() (string, time.Time, error) {
	return i.token, i.now().Add(i.ttl), nil
}

func (i *StaticIssuer) Validate(token string) error {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(i.token)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
