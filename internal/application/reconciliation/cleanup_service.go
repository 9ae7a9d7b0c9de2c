package reconciliation

import (
	"context"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CleanupService removes orphaned accounts: rows that never acquired an
// external_id and have outlived the caller's retention window. The
// window is always explicit. There is no default; the 30 days the admin
// UI suggests is a suggestion and nothing more, and a request without a
// positive retention_days is rejected outright.
type CleanupService struct {
	accountRepo account.Repository
	recorder    runRecorder
	logger      *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(
	accountRepo account.Repository,
	runRepo reconciliation.RunRepository,
	logger *zap.Logger,
) *CleanupService {
	return &CleanupService{
		accountRepo: accountRepo,
		recorder:    runRecorder{runRepo: runRepo, logger: logger},
		logger:      logger,
	}
}

// CleanupInput contains input for a cleanup run
type CleanupInput struct {
	RetentionDays int
	DryRun        bool
	Actor         string
}

// ReapedAccountDTO identifies one account in the cleanup manifest
type ReapedAccountDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CleanupFailureDTO describes one row the reaper could not delete
type CleanupFailureDTO struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// CleanupResultDTO is the manifest of a cleanup run. Skipped rows were
// eligible in the snapshot but no longer orphaned (or no longer old
// enough) when their delete ran; that race is benign and self-heals.
type CleanupResultDTO struct {
	RunID         uuid.UUID           `json:"run_id,omitempty"`
	RetentionDays int                 `json:"retention_days"`
	Cutoff        time.Time           `json:"cutoff"`
	DryRun        bool                `json:"dry_run"`
	Eligible      int                 `json:"eligible"`
	Removed       int                 `json:"removed"`
	Skipped       int                 `json:"skipped"`
	Failed        int                 `json:"failed"`
	Accounts      []ReapedAccountDTO  `json:"accounts"`
	Failures      []CleanupFailureDTO `json:"failures,omitempty"`
}

// Cleanup deletes accounts with no external_id created before
// now - retentionDays. Linked accounts are never candidates regardless
// of age: an account that ever authenticated carries its external_id,
// so age alone cannot select it. Each delete re-checks the orphan
// condition inside its own statement, and one failure never stops the
// rest of the batch.
func (s *CleanupService) Cleanup(ctx context.Context, input CleanupInput) (*CleanupResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "cleanup",
		telemetry.WithAttribute(telemetry.SpanAttrActor, input.Actor),
		telemetry.WithAttribute(telemetry.SpanAttrDryRun, input.DryRun))
	defer span.End()

	if input.RetentionDays < 1 {
		return nil, shared.NewDomainError(ErrCodeValidation,
			"retention_days is required and must be at least 1")
	}

	run, err := reconciliation.NewRun(reconciliation.OperationCleanup, input.Actor,
		encodeParameters(map[string]any{
			"retention_days": input.RetentionDays,
			"dry_run":        input.DryRun,
		}))
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -input.RetentionDays)
	candidates, err := s.accountRepo.FindOrphanedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to find orphaned accounts", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to find orphaned accounts")
	}

	s.logger.Info("Cleanup started",
		zap.String("actor", input.Actor),
		zap.Int("retention_days", input.RetentionDays),
		zap.Time("cutoff", cutoff),
		zap.Bool("dry_run", input.DryRun),
		zap.Int("eligible", len(candidates)))

	result := &CleanupResultDTO{
		RetentionDays: input.RetentionDays,
		Cutoff:        cutoff,
		DryRun:        input.DryRun,
		Eligible:      len(candidates),
		Accounts:      make([]ReapedAccountDTO, 0, len(candidates)),
	}

	if input.DryRun {
		for _, acct := range candidates {
			result.Accounts = append(result.Accounts, toReapedDTO(acct))
		}
		s.recorder.record(ctx, run, result.Eligible, 0, 0, result)
		result.RunID = run.ID
		return result, nil
	}

	for _, acct := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		deleted, err := s.accountRepo.DeleteIfOrphanedBefore(ctx, acct.ID, cutoff)
		if err != nil {
			s.logger.Error("Failed to delete orphaned account",
				zap.String("account_id", acct.ID.String()), zap.Error(err))
			result.Failed++
			result.Failures = append(result.Failures, CleanupFailureDTO{
				ID:      acct.ID,
				Message: err.Error(),
			})
			continue
		}
		if !deleted {
			// Linked or recreated between the snapshot and this delete.
			result.Skipped++
			continue
		}
		result.Removed++
		result.Accounts = append(result.Accounts, toReapedDTO(acct))
	}

	s.recorder.record(ctx, run, result.Eligible, result.Removed, result.Failed, result)
	result.RunID = run.ID
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRunID, run.ID.String(),
		telemetry.SpanAttrFailed, result.Failed)

	s.logger.Info("Cleanup completed",
		zap.Int("removed", result.Removed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}

func toReapedDTO(acct *account.Account) ReapedAccountDTO {
	return ReapedAccountDTO{
		ID:        acct.ID,
		Email:     acct.Email,
		CreatedAt: acct.CreatedAt,
	}
}
