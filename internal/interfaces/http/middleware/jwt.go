package middleware

import (
	"net/http"
	"strings"

	"github.com/brightcart/backend/internal/infrastructure/auth"
	"github.com/brightcart/backend/internal/infrastructure/logger"
	"github.com/brightcart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys
const (
	AuthClaimsKey     = "auth_claims"
	AuthExternalIDKey = "auth_external_id"
	AuthBearerToken   = "auth_bearer_token"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// AuthMiddlewareConfig holds configuration for the auth middleware
type AuthMiddlewareConfig struct {
	// Verifier validates provider-issued tokens
	Verifier *auth.TokenVerifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// RequireAuth creates authentication middleware with default config
func RequireAuth(verifier *auth.TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return RequireAuthWithConfig(AuthMiddlewareConfig{
		Verifier: verifier,
		Logger:   log,
	})
}

// RequireAuthWithConfig creates authentication middleware. The raw
// bearer token is kept in context because reconciliation endpoints may
// forward it to the identity provider as the caller's credential.
func RequireAuthWithConfig(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token verification failed")
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Set(AuthExternalIDKey, claims.ExternalID())
		c.Set(AuthBearerToken, tokenString)

		// Also tag the request context so downstream logs carry the actor
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithActorID(ctx, log, claims.ExternalID())
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Authentication successful",
				zap.String("external_id", claims.ExternalID()),
			)
		}

		c.Next()
	}
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg AuthMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case auth.ErrTokenNotYetValid:
		errorCode = dto.ErrCodeTokenInvalid
		errorMessage = "Token is not yet valid"
	case auth.ErrWrongIssuer, auth.ErrWrongAudience,
		auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrMissingSubject:
		errorCode = dto.ErrCodeTokenInvalid
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorCode, errorMessage))
}

// GetAuthClaims retrieves verified token claims from gin.Context
func GetAuthClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(AuthClaimsKey); exists {
		if authClaims, ok := claims.(*auth.Claims); ok {
			return authClaims
		}
	}
	return nil
}

// GetExternalID retrieves the authenticated provider identity ID
func GetExternalID(c *gin.Context) string {
	if externalID, exists := c.Get(AuthExternalIDKey); exists {
		if id, ok := externalID.(string); ok {
			return id
		}
	}
	return ""
}

// GetBearerToken retrieves the raw bearer token of the current request
func GetBearerToken(c *gin.Context) string {
	if token, exists := c.Get(AuthBearerToken); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
