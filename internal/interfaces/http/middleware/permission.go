package middleware

import (
	"errors"
	"net/http"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context key for the resolved store account of the caller
const AuthAccountIDKey = "auth_account_id"

// RequireAdministrator creates middleware guarding admin endpoints. A
// valid provider token only proves identity; whether the caller may
// administrate is decided by the store account linked to it. The
// account must exist, be active, and hold the administrator role.
func RequireAdministrator(accountRepo account.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID := GetExternalID(c)
		if externalID == "" {
			abortForbidden(c, log, "", "No authenticated identity")
			return
		}

		acct, err := accountRepo.FindByExternalID(c.Request.Context(), externalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortForbidden(c, log, externalID, "No store account is linked to this identity")
				return
			}
			if log != nil {
				log.Error("Failed to resolve caller account",
					zap.String("external_id", externalID),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Failed to resolve caller account"))
			return
		}

		if !acct.IsActive {
			abortForbidden(c, log, externalID, "Account is deactivated")
			return
		}
		if acct.Role != account.RoleAdministrator {
			abortForbidden(c, log, externalID, "Administrator role required")
			return
		}

		c.Set(AuthAccountIDKey, acct.ID.String())
		c.Next()
	}
}

// GetAuthAccountID retrieves the caller's store account ID, set by
// RequireAdministrator
func GetAuthAccountID(c *gin.Context) string {
	if accountID, exists := c.Get(AuthAccountIDKey); exists {
		if id, ok := accountID.(string); ok {
			return id
		}
	}
	return ""
}

func abortForbidden(c *gin.Context, log *zap.Logger, externalID, reason string) {
	if log != nil {
		log.Warn("Admin access denied",
			zap.String("external_id", externalID),
			zap.String("reason", reason),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponse(dto.ErrCodeForbidden, "Access denied: administrator role required"))
}
