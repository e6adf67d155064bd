package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-census/internal/ports/auth"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNotConfigured = errors.New("jwt signer not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token invalid")
)

// Config del firmador/verificador JWT.
// Secret normalmente viene de env (JWT_SECRET) en quien lo instancia.
type Config struct {
	Secret string
	Issuer string

	// TTL del token emitido. Si es <= 0 se usan 24h.
	TTL time.Duration
}

// Signer implementa auth.TokenIssuer y auth.AuthVerifier con HS256.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func New(cfg Config) *Signer {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{
		secret: []byte(strings.TrimSpace(cfg.Secret)),
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Signer) IsConfigured() bool {
	return s != nil && len(s.secret) > 0
}

type tokenClaims struct {
	Email   string   `json:"email,omitempty"`
	Role    string   `json:"role"`
	CityIDs []string `json:"city_ids,omitempty"`
	jwt.RegisteredClaims
}

func (s *Signer) Issue(ctx context.Context, c auth.Claims) (string, error) {
	if !s.IsConfigured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(c.UserID) == "" {
		return "", errors.New("claims missing user id")
	}

	now := s.now()
	tc := tokenClaims{
		Email:   c.Email,
		Role:    c.Role,
		CityIDs: c.CityIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt sign failed: %w", err)
	}
	return signed, nil
}

func (s *Signer) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if !s.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		// Solo HS256; rechazar alg-swapping.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	userID := strings.TrimSpace(tc.Subject)
	if userID == "" {
		return auth.Claims{}, errors.New("token claims missing subject")
	}

	return auth.Claims{
		UserID:  userID,
		Email:   tc.Email,
		Role:    tc.Role,
		CityIDs: tc.CityIDs,
	}, nil
}
