package auth

import (
	"errors"
	"strings"

	"github.com/brightcart/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingSubject   = errors.New("missing subject in claims")
	ErrWrongIssuer      = errors.New("token issued by unexpected issuer")
	ErrWrongAudience    = errors.New("token intended for another audience")
)

// Claims represents the claims carried by provider-issued tokens. The
// subject is the provider identity ID (external_id in the store).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ExternalID returns the provider identity ID the token was issued for
func (c *Claims) ExternalID() string {
	return c.Subject
}

// TokenVerifier validates tokens issued by the identity provider. The
// server never mints tokens of its own; it only checks signature,
// expiry, and (when configured) issuer and audience, then trusts the
// subject claim.
type TokenVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewTokenVerifier creates a verifier from the auth configuration
func NewTokenVerifier(cfg config.AuthConfig) *TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		opts:   opts,
	}
}

// Verify parses and validates a token string and returns its claims
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrWrongIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrWrongAudience
	default:
		return ErrInvalidToken
	}
}
