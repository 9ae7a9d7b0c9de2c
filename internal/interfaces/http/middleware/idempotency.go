package middleware

import (
	"net/http"

	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the request header carrying the client's
// idempotency key
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	// Store records processed keys
	Store shared.IdempotencyStore
	// Settings controls TTL and whether checking is enabled
	Settings shared.IdempotencyConfig
	// Logger for middleware logging
	Logger *zap.Logger
}

// Idempotency rejects replays of mutating requests that carry an
// Idempotency-Key header. Requests without the header pass through
// untouched. Store failures fail open: a broken Redis must not take
// down write traffic.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Settings.Enabled || cfg.Store == nil {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		// Scope the key per method+path so the same key can be reused
		// against different endpoints.
		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key

		fresh, err := cfg.Store.MarkProcessed(c.Request.Context(), scoped, cfg.Settings.TTL)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Idempotency check failed, allowing request",
					zap.String("key", key),
					zap.Error(err))
			}
			c.Next()
			return
		}

		if !fresh {
			if cfg.Logger != nil {
				cfg.Logger.Info("Duplicate request rejected",
					zap.String("key", key),
					zap.String("path", c.Request.URL.Path))
			}
			c.AbortWithStatusJSON(http.StatusConflict,
				dto.NewErrorResponse(dto.ErrCodeDuplicateRequest, "Request with this idempotency key was already processed"))
			return
		}

		c.Next()
	}
}
