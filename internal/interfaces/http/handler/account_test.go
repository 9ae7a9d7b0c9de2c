package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountapp "github.com/brightcart/backend/internal/application/account"
	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/interfaces/http/dto"
	"github.com/brightcart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAccountRepo is a mock implementation of account.Repository for
// driving the real account service from handler tests.
type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, acct *account.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *mockAccountRepo) Update(ctx context.Context, acct *account.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *mockAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepo) DeleteIfOrphanedBefore(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	args := m.Called(ctx, id, cutoff)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *mockAccountRepo) FindByExternalID(ctx context.Context, externalID string) (*account.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *mockAccountRepo) FindUnlinkedByEmail(ctx context.Context, email string) ([]*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *mockAccountRepo) FindAll(ctx context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*account.Account), args.Get(1).(int64), args.Error(2)
}

func (m *mockAccountRepo) FindOrphanedBefore(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *mockAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) CountLinked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) CountUnlinked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) CountByRole(ctx context.Context, role account.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) CountInactive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newAccountHandlerTest(t *testing.T) (*AccountHandler, *mockAccountRepo) {
	t.Helper()
	repo := new(mockAccountRepo)
	service := accountapp.NewAccountService(repo, zap.NewNop())
	return NewAccountHandler(service), repo
}

func testAccount(t *testing.T, email string) *account.Account {
	t.Helper()
	acct, err := account.NewAccount(email, "Test User")
	require.NoError(t, err)
	return acct
}

func linkedTestAccount(t *testing.T, email, externalID string) *account.Account {
	t.Helper()
	acct := testAccount(t, email)
	require.NoError(t, acct.LinkIdentity(externalID))
	return acct
}

func TestAccountHandler_Signup(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	repo.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

	body, _ := json.Marshal(SignupRequest{Email: "Jane@Example.com", DisplayName: "Jane"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/accounts/signup", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Signup(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "jane@example.com", data["email"])
	assert.Equal(t, "standard", data["role"])
	assert.Equal(t, false, data["is_linked"])
	repo.AssertExpectations(t)
}

func TestAccountHandler_Signup_InvalidBody(t *testing.T) {
	h, _ := newAccountHandlerTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/accounts/signup",
		bytes.NewReader([]byte(`{"email":"not-an-email"}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Signup(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
}

func TestAccountHandler_Signup_EmailExists(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	repo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	body, _ := json.Marshal(SignupRequest{Email: "taken@example.com"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/accounts/signup", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Signup(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_EXISTS")
}

func TestAccountHandler_GetProfile(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := linkedTestAccount(t, "jane@example.com", "idp-42")
	repo.On("FindByExternalID", mock.Anything, "idp-42").Return(acct, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/profile", nil)
	c.Set(middleware.AuthExternalIDKey, "idp-42")

	h.GetProfile(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "idp-42", data["external_id"])
	assert.Equal(t, true, data["is_linked"])
}

func TestAccountHandler_GetProfile_Unauthenticated(t *testing.T) {
	h, _ := newAccountHandlerTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/profile", nil)

	h.GetProfile(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountHandler_GetProfile_NotLinked(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	repo.On("FindByExternalID", mock.Anything, "idp-unknown").Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/profile", nil)
	c.Set(middleware.AuthExternalIDKey, "idp-unknown")

	h.GetProfile(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_NOT_FOUND")
}

func TestAccountHandler_List(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	accounts := []*account.Account{
		testAccount(t, "a@example.com"),
		linkedTestAccount(t, "b@example.com", "idp-b"),
	}
	repo.On("FindAll", mock.Anything, mock.AnythingOfType("account.Filter")).
		Return(accounts, int64(2), nil)

	router := gin.New()
	router.GET("/admin/accounts", h.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/accounts?page=1&page_size=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.PageSize)
}

func TestAccountHandler_List_InvalidRole(t *testing.T) {
	h, _ := newAccountHandlerTest(t)

	router := gin.New()
	router.GET("/admin/accounts", h.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/accounts?role=superuser", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountHandler_GetByID(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := testAccount(t, "jane@example.com")
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)

	router := gin.New()
	router.GET("/admin/accounts/:id", h.GetByID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/accounts/"+acct.ID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@example.com")
}

func TestAccountHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newAccountHandlerTest(t)

	router := gin.New()
	router.GET("/admin/accounts/:id", h.GetByID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/accounts/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountHandler_GetByID_NotFound(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	router := gin.New()
	router.GET("/admin/accounts/:id", h.GetByID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/accounts/"+id.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountHandler_Update(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := testAccount(t, "old@example.com")
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	repo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

	newEmail := "new@example.com"
	body, _ := json.Marshal(UpdateAccountRequest{Email: &newEmail})

	router := gin.New()
	router.PUT("/admin/accounts/:id", h.Update)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/admin/accounts/"+acct.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")
}

func TestAccountHandler_ChangeRole(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := linkedTestAccount(t, "jane@example.com", "idp-42")
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

	body, _ := json.Marshal(ChangeRoleRequest{Role: "administrator"})

	router := gin.New()
	router.PUT("/admin/accounts/:id/role", h.ChangeRole)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/admin/accounts/"+acct.ID.String()+"/role", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "administrator", data["role"])
}

func TestAccountHandler_ChangeRole_InvalidRole(t *testing.T) {
	h, _ := newAccountHandlerTest(t)

	body, _ := json.Marshal(ChangeRoleRequest{Role: "superuser"})

	router := gin.New()
	router.PUT("/admin/accounts/:id/role", h.ChangeRole)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/admin/accounts/"+uuid.NewString()+"/role", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountHandler_Deactivate(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := testAccount(t, "jane@example.com")
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

	router := gin.New()
	router.POST("/admin/accounts/:id/deactivate", h.Deactivate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/accounts/"+acct.ID.String()+"/deactivate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["is_active"])
}

func TestAccountHandler_Deactivate_AlreadyInactive(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := testAccount(t, "jane@example.com")
	require.NoError(t, acct.Deactivate())
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)

	router := gin.New()
	router.POST("/admin/accounts/:id/deactivate", h.Deactivate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/accounts/"+acct.ID.String()+"/deactivate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestAccountHandler_Reactivate(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := testAccount(t, "jane@example.com")
	require.NoError(t, acct.Deactivate())
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

	router := gin.New()
	router.POST("/admin/accounts/:id/reactivate", h.Reactivate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/accounts/"+acct.ID.String()+"/reactivate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["is_active"])
}

func TestAccountHandler_Delete(t *testing.T) {
	h, repo := newAccountHandlerTest(t)

	acct := testAccount(t, "gone@example.com")
	repo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	repo.On("Delete", mock.Anything, acct.ID).Return(nil)

	router := gin.New()
	router.DELETE("/admin/accounts/:id", h.Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/admin/accounts/"+acct.ID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	repo.AssertExpectations(t)
}
