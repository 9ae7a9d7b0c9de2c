package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAccountRepository is a mock implementation of account.Repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acct *account.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, acct *account.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteIfOrphanedBefore(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	args := m.Called(ctx, id, cutoff)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByExternalID(ctx context.Context, externalID string) (*account.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindUnlinkedByEmail(ctx context.Context, email string) ([]*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*account.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) FindOrphanedBefore(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CountLinked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CountUnlinked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CountByRole(ctx context.Context, role account.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CountInactive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Helper to create a test account
func createTestAccount(t *testing.T, email string) *account.Account {
	t.Helper()
	acct, err := account.NewAccount(email, "Test Shopper")
	require.NoError(t, err)
	acct.ClearDomainEvents()
	return acct
}

func TestAccountService_Signup_Success(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	accountRepo.On("ExistsByEmail", mock.Anything, "shopper@example.com").Return(false, nil)
	accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(acct *account.Account) bool {
		return acct.Email == "shopper@example.com" &&
			!acct.IsLinked() &&
			acct.Role == account.RoleStandard &&
			acct.IsActive
	})).Return(nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Signup(ctx, SignupInput{
		Email:       "Shopper@Example.com",
		DisplayName: "Test Shopper",
	})

	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", dto.Email)
	assert.Equal(t, "standard", dto.Role)
	assert.False(t, dto.IsLinked)
	assert.Nil(t, dto.ExternalID)
	accountRepo.AssertExpectations(t)
}

func TestAccountService_Signup_EmailExists(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	accountRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Signup(ctx, SignupInput{Email: "taken@example.com"})

	require.Error(t, err)
	assert.Nil(t, dto)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "EMAIL_EXISTS", domainErr.Code)
	accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccountService_Signup_ConcurrentSignupLosesRace(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	accountRepo.On("ExistsByEmail", mock.Anything, "raced@example.com").Return(false, nil)
	accountRepo.On("Create", mock.Anything, mock.AnythingOfType("*account.Account")).
		Return(shared.ErrAlreadyExists)

	service := NewAccountService(accountRepo, zap.NewNop())
	_, err := service.Signup(ctx, SignupInput{Email: "raced@example.com"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "EMAIL_EXISTS", domainErr.Code)
}

func TestAccountService_Signup_InvalidEmail(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	accountRepo.On("ExistsByEmail", mock.Anything, "not-an-email").Return(false, nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Signup(ctx, SignupInput{Email: "not-an-email"})

	require.Error(t, err)
	assert.Nil(t, dto)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_EMAIL", domainErr.Code)
}

func TestAccountService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	id := uuid.New()
	accountRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.GetByID(ctx, id)

	require.Error(t, err)
	assert.Nil(t, dto)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ACCOUNT_NOT_FOUND", domainErr.Code)
}

func TestAccountService_GetByExternalID_ReturnsOwnProfile(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct, err := account.NewImportedAccount("ext-42", "me@example.com", "Me", account.RoleStandard)
	require.NoError(t, err)
	accountRepo.On("FindByExternalID", mock.Anything, "ext-42").Return(acct, nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.GetByExternalID(ctx, "ext-42")

	require.NoError(t, err)
	assert.Equal(t, "me@example.com", dto.Email)
	assert.True(t, dto.IsLinked)
	require.NotNil(t, dto.ExternalID)
	assert.Equal(t, "ext-42", *dto.ExternalID)
}

func TestAccountService_List_ReturnsPaginatedAccounts(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	accounts := []*account.Account{
		createTestAccount(t, "one@example.com"),
		createTestAccount(t, "two@example.com"),
	}
	filter := account.NewFilter().WithPagination(1, 2)
	accountRepo.On("FindAll", mock.Anything, filter).Return(accounts, int64(5), nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	result, err := service.List(ctx, filter)

	require.NoError(t, err)
	assert.Len(t, result.Accounts, 2)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, 3, result.TotalPages)
}

func TestAccountService_Update_ChangesProfileFields(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "old@example.com")
	newEmail := "new@example.com"
	newName := "Renamed Shopper"

	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	accountRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	accountRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *account.Account) bool {
		return updated.Email == "new@example.com" && updated.DisplayName == "Renamed Shopper"
	})).Return(nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Update(ctx, UpdateAccountInput{
		ID:          acct.ID,
		Email:       &newEmail,
		DisplayName: &newName,
	})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", dto.Email)
	accountRepo.AssertExpectations(t)
}

func TestAccountService_Update_EmailTakenByAnotherAccount(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "old@example.com")
	takenEmail := "taken@example.com"

	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	accountRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Update(ctx, UpdateAccountInput{ID: acct.ID, Email: &takenEmail})

	require.Error(t, err)
	assert.Nil(t, dto)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "EMAIL_EXISTS", domainErr.Code)
	accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAccountService_ChangeRole_PromotesToAdministrator(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "promoted@example.com")
	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	accountRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *account.Account) bool {
		return updated.Role == account.RoleAdministrator
	})).Return(nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.ChangeRole(ctx, acct.ID, account.RoleAdministrator)

	require.NoError(t, err)
	assert.Equal(t, "administrator", dto.Role)
	accountRepo.AssertExpectations(t)
}

func TestAccountService_ChangeRole_RejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "user@example.com")
	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.ChangeRole(ctx, acct.ID, account.Role("manager"))

	require.Error(t, err)
	assert.Nil(t, dto)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
	accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAccountService_Deactivate_SoftDeletes(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "leaving@example.com")
	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	accountRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *account.Account) bool {
		return !updated.IsActive
	})).Return(nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Deactivate(ctx, acct.ID)

	require.NoError(t, err)
	assert.False(t, dto.IsActive)
	accountRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAccountService_Deactivate_AlreadyInactive(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "gone@example.com")
	require.NoError(t, acct.Deactivate())
	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Deactivate(ctx, acct.ID)

	require.Error(t, err)
	assert.Nil(t, dto)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestAccountService_Reactivate_RestoresAccount(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "returning@example.com")
	require.NoError(t, acct.Deactivate())
	acct.ClearDomainEvents()

	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	accountRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *account.Account) bool {
		return updated.IsActive
	})).Return(nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	dto, err := service.Reactivate(ctx, acct.ID)

	require.NoError(t, err)
	assert.True(t, dto.IsActive)
}

func TestAccountService_Delete_RemovesAccount(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)

	acct := createTestAccount(t, "purged@example.com")
	accountRepo.On("FindByID", mock.Anything, acct.ID).Return(acct, nil)
	accountRepo.On("Delete", mock.Anything, acct.ID).Return(nil)

	service := NewAccountService(accountRepo, zap.NewNop())
	err := service.Delete(ctx, acct.ID)

	require.NoError(t, err)
	accountRepo.AssertExpectations(t)
}
