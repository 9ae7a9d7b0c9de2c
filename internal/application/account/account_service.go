package account

import (
	"context"
	"errors"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService handles store account management operations
type AccountService struct {
	accountRepo account.Repository
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// SignupInput contains input for self-service account creation
type SignupInput struct {
	Email       string
	DisplayName string
}

// UpdateAccountInput contains input for updating an account
type UpdateAccountInput struct {
	ID          uuid.UUID
	Email       *string
	DisplayName *string
}

// AccountDTO represents account data transfer object
type AccountDTO struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  *string   `json:"external_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsLinked    bool      `json:"is_linked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountListResult represents paginated account list result
type AccountListResult struct {
	Accounts   []AccountDTO `json:"accounts"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// Signup creates a new unlinked account. Self-service signups always
// start with the standard role; only an explicit administrative action
// changes it later.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*AccountDTO, error) {
	email := account.NormalizeEmail(input.Email)
	s.logger.Info("Creating new account", zap.String("email", email))

	exists, err := s.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already registered")
	}

	acct, err := account.NewAccount(input.Email, input.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acct); err != nil {
		// The uniqueness check above can race a concurrent signup; the
		// unique index is the real arbiter.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already registered")
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
	}

	s.logger.Info("Account created successfully",
		zap.String("account_id", acct.ID.String()),
		zap.String("email", acct.Email))

	return toAccountDTO(acct), nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	acct, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		s.logger.Error("Failed to find account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	return toAccountDTO(acct), nil
}

// GetByExternalID retrieves the account linked to a provider identity.
// Authenticated callers are identified by the external_id in their
// token, so this is the own-profile lookup.
func (s *AccountService) GetByExternalID(ctx context.Context, externalID string) (*AccountDTO, error) {
	acct, err := s.accountRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		s.logger.Error("Failed to find account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	return toAccountDTO(acct), nil
}

// List retrieves a paginated list of accounts
func (s *AccountService) List(ctx context.Context, filter account.Filter) (*AccountListResult, error) {
	accounts, total, err := s.accountRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list accounts")
	}

	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	accountDTOs := make([]AccountDTO, len(accounts))
	for i, acct := range accounts {
		accountDTOs[i] = *toAccountDTO(acct)
	}

	return &AccountListResult{
		Accounts:   accountDTOs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates an account's profile fields
func (s *AccountService) Update(ctx context.Context, input UpdateAccountInput) (*AccountDTO, error) {
	acct, err := s.accountRepo.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	if input.Email != nil {
		email := account.NormalizeEmail(*input.Email)
		if email != acct.Email {
			exists, err := s.accountRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
			}
			if exists {
				return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already registered")
			}
		}
		if err := acct.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}

	if input.DisplayName != nil {
		if err := acct.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Update(ctx, acct); err != nil {
		s.logger.Error("Failed to update account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update account")
	}

	s.logger.Info("Account updated", zap.String("account_id", input.ID.String()))

	return toAccountDTO(acct), nil
}

// ChangeRole changes an account's business role. This is the only write
// path for roles: neither import nor resolution ever touches them.
func (s *AccountService) ChangeRole(ctx context.Context, id uuid.UUID, role account.Role) (*AccountDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "change_role",
		telemetry.WithAttribute(telemetry.SpanAttrAccountID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrRole, string(role)))
	defer span.End()

	acct, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	if err := acct.ChangeRole(role); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, acct); err != nil {
		s.logger.Error("Failed to change account role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to change account role")
	}

	s.logger.Info("Account role changed",
		zap.String("account_id", id.String()),
		zap.String("role", role.String()))

	return toAccountDTO(acct), nil
}

// Deactivate soft-deletes an account. The row survives and keeps its
// linkage; reconciliation still sees it.
func (s *AccountService) Deactivate(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	acct, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	if err := acct.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, acct); err != nil {
		s.logger.Error("Failed to deactivate account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate account")
	}

	s.logger.Info("Account deactivated", zap.String("account_id", id.String()))

	return toAccountDTO(acct), nil
}

// Reactivate re-enables a soft-deleted account
func (s *AccountService) Reactivate(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	acct, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	if err := acct.Reactivate(); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, acct); err != nil {
		s.logger.Error("Failed to reactivate account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to reactivate account")
	}

	s.logger.Info("Account reactivated", zap.String("account_id", id.String()))

	return toAccountDTO(acct), nil
}

// Delete permanently removes an account
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	acct, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	if err := s.accountRepo.Delete(ctx, acct.ID); err != nil {
		s.logger.Error("Failed to delete account", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete account")
	}

	s.logger.Info("Account deleted", zap.String("account_id", id.String()))

	return nil
}

func toAccountDTO(acct *account.Account) *AccountDTO {
	return &AccountDTO{
		ID:          acct.ID,
		ExternalID:  acct.ExternalID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		Role:        string(acct.Role),
		IsActive:    acct.IsActive,
		IsLinked:    acct.IsLinked(),
		CreatedAt:   acct.CreatedAt,
		UpdatedAt:   acct.UpdatedAt,
	}
}
