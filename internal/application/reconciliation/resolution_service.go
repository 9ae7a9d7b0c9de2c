package reconciliation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/integration"
	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultResolutionConcurrency bounds how many provider role writes run
// in flight at once when the config does not say otherwise.
const DefaultResolutionConcurrency = 4

// ResolutionService settles role conflicts. The store role is
// authoritative: resolution always pushes it into the provider's
// metadata bag, one independent write per conflict, and never touches
// the account row.
type ResolutionService struct {
	accountRepo   account.Repository
	provider      integration.IdentityProvider
	store         *StoreSnapshotFetcher
	recorder      runRecorder
	maxConcurrent int
	logger        *zap.Logger
}

// NewResolutionService creates a new resolution service. maxConcurrent
// values below one fall back to the default.
func NewResolutionService(
	accountRepo account.Repository,
	runRepo reconciliation.RunRepository,
	provider integration.IdentityProvider,
	maxConcurrent int,
	logger *zap.Logger,
) *ResolutionService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultResolutionConcurrency
	}
	return &ResolutionService{
		accountRepo:   accountRepo,
		provider:      provider,
		store:         NewStoreSnapshotFetcher(accountRepo),
		recorder:      runRecorder{runRepo: runRepo, logger: logger},
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// ResolveInput contains input for a directory-wide resolution run
type ResolveInput struct {
	Credential integration.Credential
	Actor      string
	PageSize   int
}

// ResolveOneInput contains input for resolving a single identity
type ResolveOneInput struct {
	Credential integration.Credential
	Actor      string
	ExternalID string
}

// ConflictOutcomeDTO is the per-conflict result of a resolution run
type ConflictOutcomeDTO struct {
	ExternalID string `json:"external_id"`
	Success    bool   `json:"success"`
	ResolvedTo string `json:"resolved_to,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ResolutionResultDTO summarizes a resolution run. One failed push never
// aborts the rest; both counts are always reported.
type ResolutionResultDTO struct {
	RunID     uuid.UUID            `json:"run_id,omitempty"`
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Outcomes  []ConflictOutcomeDTO `json:"outcomes"`
}

// ResolveAll diffs the two systems and pushes the store role to the
// provider for every conflict, at most maxConcurrent writes in flight.
// Rerunning after convergence finds no conflicts and writes nothing.
func (s *ResolutionService) ResolveAll(ctx context.Context, input ResolveInput) (*ResolutionResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "resolve",
		telemetry.WithAttribute(telemetry.SpanAttrActor, input.Actor))
	defer span.End()

	if err := input.Credential.Validate(); err != nil {
		return nil, providerError(err)
	}

	run, err := reconciliation.NewRun(reconciliation.OperationResolve, input.Actor,
		encodeParameters(map[string]any{"scope": "all"}))
	if err != nil {
		return nil, err
	}

	comparison, err := compareSystems(ctx, s.provider, s.store, input.Credential, input.PageSize)
	if err != nil {
		s.logger.Error("Failed to diff provider and store", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	conflicts := comparison.RoleConflicts
	s.logger.Info("Resolution started",
		zap.String("actor", input.Actor),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("max_concurrent", s.maxConcurrent))

	outcomes := s.resolveConflicts(ctx, input.Credential, conflicts)
	result := s.buildResult(outcomes)
	s.recorder.record(ctx, run, result.Total, result.Succeeded, result.Failed, result)
	result.RunID = run.ID
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRunID, run.ID.String(),
		telemetry.SpanAttrConflicts, result.Total,
		telemetry.SpanAttrFailed, result.Failed)

	s.logger.Info("Resolution completed",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result, nil
}

// ResolveOne settles the conflict (if any) for one named identity. An
// already consistent pair is reported as success without a provider
// write, which keeps repeated calls idempotent.
func (s *ResolutionService) ResolveOne(ctx context.Context, input ResolveOneInput) (*ResolutionResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "resolve_one",
		telemetry.WithAttribute(telemetry.SpanAttrActor, input.Actor),
		telemetry.WithAttribute(telemetry.SpanAttrExternalID, input.ExternalID))
	defer span.End()

	if err := input.Credential.Validate(); err != nil {
		return nil, providerError(err)
	}
	externalID := strings.TrimSpace(input.ExternalID)
	if externalID == "" {
		return nil, shared.NewDomainError(ErrCodeValidation, "external_id is required")
	}

	run, err := reconciliation.NewRun(reconciliation.OperationResolve, input.Actor,
		encodeParameters(map[string]any{"scope": "one", "external_id": externalID}))
	if err != nil {
		return nil, err
	}

	acct, err := s.accountRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(ErrCodeNotFound, "No account is linked to this identity")
		}
		s.logger.Error("Failed to look up account", zap.String("external_id", externalID), zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to look up account")
	}

	identity, err := s.provider.GetIdentity(ctx, input.Credential, externalID)
	if err != nil {
		if errors.Is(err, integration.ErrIdentityNotFound) {
			return nil, shared.NewDomainError(ErrCodeNotFound, "Identity no longer exists in the provider")
		}
		s.logger.Error("Failed to fetch identity", zap.String("external_id", externalID), zap.Error(err))
		return nil, providerError(err)
	}

	var outcome ConflictOutcomeDTO
	if account.NormalizeRole(identity.Role) == acct.Role {
		outcome = ConflictOutcomeDTO{
			ExternalID: externalID,
			Success:    true,
			ResolvedTo: string(acct.Role),
		}
	} else {
		outcome = s.pushStoreRole(ctx, input.Credential, externalID, acct.Role)
	}

	result := s.buildResult([]ConflictOutcomeDTO{outcome})
	s.recorder.record(ctx, run, result.Total, result.Succeeded, result.Failed, result)
	result.RunID = run.ID

	return result, nil
}

// resolveConflicts fans the pushes out over a bounded worker window.
// Each outcome lands in its own slot, so order follows the conflict
// order and no lock is needed.
func (s *ResolutionService) resolveConflicts(ctx context.Context, cred integration.Credential, conflicts []reconciliation.RoleConflict) []ConflictOutcomeDTO {
	outcomes := make([]ConflictOutcomeDTO, len(conflicts))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, conflict := range conflicts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, conflict reconciliation.RoleConflict) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = s.pushStoreRole(ctx, cred, conflict.ExternalID, conflict.StoreRole)
		}(i, conflict)
	}

	wg.Wait()
	return outcomes
}

// pushStoreRole writes one account's role into the provider metadata bag
func (s *ResolutionService) pushStoreRole(ctx context.Context, cred integration.Credential, externalID string, role account.Role) ConflictOutcomeDTO {
	update := integration.RoleUpdate{ExternalID: externalID, Role: string(role)}
	if err := update.Validate(); err != nil {
		return ConflictOutcomeDTO{
			ExternalID: externalID,
			Code:       ErrCodeValidation,
			Message:    err.Error(),
		}
	}

	if err := s.provider.UpdateRoleMetadata(ctx, cred, update); err != nil {
		s.logger.Warn("Failed to push role to provider",
			zap.String("external_id", externalID),
			zap.String("role", string(role)),
			zap.Error(err))
		return ConflictOutcomeDTO{
			ExternalID: externalID,
			Code:       classifyProviderError(err),
			Message:    err.Error(),
		}
	}

	return ConflictOutcomeDTO{
		ExternalID: externalID,
		Success:    true,
		ResolvedTo: string(role),
	}
}

func (s *ResolutionService) buildResult(outcomes []ConflictOutcomeDTO) *ResolutionResultDTO {
	result := &ResolutionResultDTO{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	for _, outcome := range outcomes {
		if outcome.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result
}
