package reconciliation

import (
	"context"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StatusService reports the live shape of the account store. Every call
// aggregates directly over the accounts table; nothing is cached, so the
// numbers reflect whatever the last write left behind.
type StatusService struct {
	accountRepo account.Repository
	logger      *zap.Logger
}

// NewStatusService creates a new status service
func NewStatusService(accountRepo account.Repository, logger *zap.Logger) *StatusService {
	return &StatusService{accountRepo: accountRepo, logger: logger}
}

// StatusDTO carries the aggregate counters
type StatusDTO struct {
	TotalAccounts       int64     `json:"total_accounts"`
	LinkedAccounts      int64     `json:"linked_accounts"`
	UnlinkedAccounts    int64     `json:"unlinked_accounts"`
	AdministratorCount  int64     `json:"administrator_count"`
	DeactivatedAccounts int64     `json:"deactivated_accounts"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// GetStatus aggregates the current account counters
func (s *StatusService) GetStatus(ctx context.Context) (*StatusDTO, error) {
	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count accounts", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to aggregate account status")
	}
	linked, err := s.accountRepo.CountLinked(ctx)
	if err != nil {
		s.logger.Error("Failed to count linked accounts", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to aggregate account status")
	}
	unlinked, err := s.accountRepo.CountUnlinked(ctx)
	if err != nil {
		s.logger.Error("Failed to count unlinked accounts", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to aggregate account status")
	}
	admins, err := s.accountRepo.CountByRole(ctx, account.RoleAdministrator)
	if err != nil {
		s.logger.Error("Failed to count administrators", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to aggregate account status")
	}
	inactive, err := s.accountRepo.CountInactive(ctx)
	if err != nil {
		s.logger.Error("Failed to count deactivated accounts", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to aggregate account status")
	}

	return &StatusDTO{
		TotalAccounts:       total,
		LinkedAccounts:      linked,
		UnlinkedAccounts:    unlinked,
		AdministratorCount:  admins,
		DeactivatedAccounts: inactive,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}
