// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authcore/config"
	"authcore/internal/domain/service"
	"authcore/internal/errors"
)

// tokenClaims is the wire shape of an access token: {sub, email} plus the
// signing-policy timestamps.
type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte
	ttl    time.Duration // Zero means tokens carry no exp claim.
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	var ttl time.Duration
	if cfg.Auth != nil {
		ttl = cfg.Auth.TokenTTL
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs the claims into a token.
func (s *jwtService) Issue(claims service.Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("token subject is required")
	}

	now := s.now()
	registered := jwt.RegisteredClaims{
		Subject:  claims.Subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:            claims.Email,
		RegisteredClaims: registered,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate parses the token, checking the signature method, signature and expiry.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.WithStack(jwt.ErrTokenInvalidClaims)
	}

	if claims.Subject == "" {
		return nil, errors.Wrap(jwt.ErrTokenInvalidClaims, "token has no subject")
	}

	return &service.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}
