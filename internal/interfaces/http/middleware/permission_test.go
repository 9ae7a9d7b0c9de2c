package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAccountRepo implements account.Repository with a configurable
// FindByExternalID; admin gating only touches that method.
type stubAccountRepo struct {
	findByExternalID func(ctx context.Context, externalID string) (*account.Account, error)
}

func (s *stubAccountRepo) Create(ctx context.Context, acct *account.Account) error { return nil }
func (s *stubAccountRepo) Update(ctx context.Context, acct *account.Account) error { return nil }
func (s *stubAccountRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (s *stubAccountRepo) DeleteIfOrphanedBefore(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	return false, nil
}
func (s *stubAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return nil, shared.ErrNotFound
}
func (s *stubAccountRepo) FindByExternalID(ctx context.Context, externalID string) (*account.Account, error) {
	return s.findByExternalID(ctx, externalID)
}
func (s *stubAccountRepo) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return nil, shared.ErrNotFound
}
func (s *stubAccountRepo) FindUnlinkedByEmail(ctx context.Context, email string) ([]*account.Account, error) {
	return nil, nil
}
func (s *stubAccountRepo) FindAll(ctx context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	return nil, 0, nil
}
func (s *stubAccountRepo) FindOrphanedBefore(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	return nil, nil
}
func (s *stubAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}
func (s *stubAccountRepo) Count(ctx context.Context) (int64, error)         { return 0, nil }
func (s *stubAccountRepo) CountLinked(ctx context.Context) (int64, error)   { return 0, nil }
func (s *stubAccountRepo) CountUnlinked(ctx context.Context) (int64, error) { return 0, nil }
func (s *stubAccountRepo) CountByRole(ctx context.Context, role account.Role) (int64, error) {
	return 0, nil
}
func (s *stubAccountRepo) CountInactive(ctx context.Context) (int64, error) { return 0, nil }

func linkedAccount(t *testing.T, externalID string, role account.Role, active bool) *account.Account {
	t.Helper()
	acct, err := account.NewImportedAccount(externalID, "admin@example.com", "Admin", role)
	require.NoError(t, err)
	if !active {
		require.NoError(t, acct.Deactivate())
	}
	return acct
}

func setupAdminRouter(repo account.Repository, externalID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if externalID != "" {
			c.Set(AuthExternalIDKey, externalID)
		}
		c.Next()
	})
	r.Use(RequireAdministrator(repo, zap.NewNop()))
	r.GET("/admin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": GetAuthAccountID(c)})
	})
	return r
}

func TestRequireAdministratorAllowsActiveAdmin(t *testing.T) {
	acct := linkedAccount(t, "idp-admin", account.RoleAdministrator, true)
	repo := &stubAccountRepo{
		findByExternalID: func(ctx context.Context, externalID string) (*account.Account, error) {
			assert.Equal(t, "idp-admin", externalID)
			return acct, nil
		},
	}
	r := setupAdminRouter(repo, "idp-admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), acct.ID.String())
}

func TestRequireAdministratorRejectsStandardRole(t *testing.T) {
	acct := linkedAccount(t, "idp-user", account.RoleStandard, true)
	repo := &stubAccountRepo{
		findByExternalID: func(ctx context.Context, externalID string) (*account.Account, error) {
			return acct, nil
		},
	}
	r := setupAdminRouter(repo, "idp-user")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestRequireAdministratorRejectsDeactivatedAdmin(t *testing.T) {
	acct := linkedAccount(t, "idp-admin", account.RoleAdministrator, false)
	repo := &stubAccountRepo{
		findByExternalID: func(ctx context.Context, externalID string) (*account.Account, error) {
			return acct, nil
		},
	}
	r := setupAdminRouter(repo, "idp-admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdministratorRejectsUnlinkedIdentity(t *testing.T) {
	repo := &stubAccountRepo{
		findByExternalID: func(ctx context.Context, externalID string) (*account.Account, error) {
			return nil, shared.ErrNotFound
		},
	}
	r := setupAdminRouter(repo, "idp-stranger")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdministratorRejectsMissingIdentity(t *testing.T) {
	repo := &stubAccountRepo{
		findByExternalID: func(ctx context.Context, externalID string) (*account.Account, error) {
			t.Fatal("repository should not be queried without an identity")
			return nil, nil
		},
	}
	r := setupAdminRouter(repo, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdministratorRepositoryError(t *testing.T) {
	repo := &stubAccountRepo{
		findByExternalID: func(ctx context.Context, externalID string) (*account.Account, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := setupAdminRouter(repo, "idp-admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
