package reconciliation

import (
	"context"
	"errors"
	"strings"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/integration"
	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportService pulls provider identities into the store. Accounts are
// keyed by external_id: unknown identities become new linked accounts,
// known ones get profile updates only. The store role column is never
// written for an existing account, whatever the provider says.
type ImportService struct {
	accountRepo account.Repository
	provider    integration.IdentityProvider
	recorder    runRecorder
	logger      *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(
	accountRepo account.Repository,
	runRepo reconciliation.RunRepository,
	provider integration.IdentityProvider,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		accountRepo: accountRepo,
		provider:    provider,
		recorder:    runRecorder{runRepo: runRepo, logger: logger},
		logger:      logger,
	}
}

// ImportInput contains input for an import run
type ImportInput struct {
	Credential integration.Credential
	Actor      string
}

// ImportFailureDTO describes one identity the import could not apply
type ImportFailureDTO struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// ImportResultDTO summarizes an import run. Failures never abort the
// batch; the counts always add up to Total.
type ImportResultDTO struct {
	RunID     uuid.UUID          `json:"run_id,omitempty"`
	Total     int                `json:"total"`
	Created   int                `json:"created"`
	Updated   int                `json:"updated"`
	Unchanged int                `json:"unchanged"`
	Failed    int                `json:"failed"`
	Failures  []ImportFailureDTO `json:"failures,omitempty"`
}

type importOutcome int

const (
	importCreated importOutcome = iota
	importUpdated
	importUnchanged
	importFailed
)

// Import fetches the identities visible to the credential and upserts a
// store account for each. Rerunning with an unchanged provider snapshot
// writes nothing.
func (s *ImportService) Import(ctx context.Context, input ImportInput) (*ImportResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "import",
		telemetry.WithAttribute(telemetry.SpanAttrActor, input.Actor))
	defer span.End()

	if err := input.Credential.Validate(); err != nil {
		return nil, providerError(err)
	}

	run, err := reconciliation.NewRun(reconciliation.OperationImport, input.Actor, "{}")
	if err != nil {
		return nil, err
	}

	identities, err := s.provider.FetchVisibleIdentities(ctx, input.Credential)
	if err != nil {
		s.logger.Error("Failed to fetch provider snapshot", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, providerError(err)
	}

	s.logger.Info("Import started",
		zap.String("actor", input.Actor),
		zap.Int("identities", len(identities)))

	result := &ImportResultDTO{Total: len(identities)}
	for _, identity := range identities {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		outcome, failure := s.importOne(ctx, identity)
		switch outcome {
		case importCreated:
			result.Created++
		case importUpdated:
			result.Updated++
		case importUnchanged:
			result.Unchanged++
		case importFailed:
			result.Failed++
			if failure != nil {
				result.Failures = append(result.Failures, *failure)
			}
		}
	}

	s.recorder.record(ctx, run, result.Total, result.Total-result.Failed, result.Failed, result)
	result.RunID = run.ID
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRunID, run.ID.String(),
		telemetry.SpanAttrFailed, result.Failed)

	s.logger.Info("Import completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("failed", result.Failed))

	return result, nil
}

// importOne applies a single identity. Each record runs in its own
// transaction; an error here marks the record failed and the batch
// moves on.
func (s *ImportService) importOne(ctx context.Context, identity integration.IdentityRecord) (importOutcome, *ImportFailureDTO) {
	externalID := strings.TrimSpace(identity.ExternalID)
	if externalID == "" {
		return importFailed, &ImportFailureDTO{
			Email:   identity.Email,
			Code:    ErrCodeValidation,
			Message: "identity carries no external id",
		}
	}

	email := account.NormalizeEmail(identity.Email)

	acct, err := s.accountRepo.FindByExternalID(ctx, externalID)
	switch {
	case err == nil:
		return s.refreshProfile(ctx, acct, email, identity.DisplayName, externalID)
	case errors.Is(err, shared.ErrNotFound):
		return s.adoptOrCreate(ctx, identity, externalID, email)
	default:
		s.logger.Error("Failed to look up account by external id",
			zap.String("external_id", externalID), zap.Error(err))
		return importFailed, s.failure(externalID, email, err)
	}
}

// refreshProfile updates email and display name on an already linked
// account. Role is authoritative in the store and is left alone.
func (s *ImportService) refreshProfile(ctx context.Context, acct *account.Account, email, displayName, externalID string) (importOutcome, *ImportFailureDTO) {
	changed := false

	if acct.Email != email {
		if err := acct.SetEmail(email); err != nil {
			return importFailed, s.failure(externalID, email, err)
		}
		changed = true
	}
	if acct.DisplayName != displayName {
		if err := acct.SetDisplayName(displayName); err != nil {
			return importFailed, s.failure(externalID, email, err)
		}
		changed = true
	}

	if !changed {
		return importUnchanged, nil
	}

	if err := s.accountRepo.Update(ctx, acct); err != nil {
		s.logger.Error("Failed to update imported account",
			zap.String("external_id", externalID), zap.Error(err))
		return importFailed, s.failure(externalID, email, err)
	}
	return importUpdated, nil
}

// adoptOrCreate handles an identity with no linked account. A single
// unlinked account with the same email gets linked; several are
// ambiguous and fail the record; none means a fresh account whose role
// is copied from the identity after normalization.
func (s *ImportService) adoptOrCreate(ctx context.Context, identity integration.IdentityRecord, externalID, email string) (importOutcome, *ImportFailureDTO) {
	matches, err := s.accountRepo.FindUnlinkedByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to look up unlinked accounts by email",
			zap.String("external_id", externalID), zap.Error(err))
		return importFailed, s.failure(externalID, email, err)
	}

	if len(matches) > 1 {
		return importFailed, &ImportFailureDTO{
			ExternalID: externalID,
			Email:      email,
			Code:       ErrCodeValidation,
			Message:    "several unlinked accounts share this email; link one manually",
		}
	}

	if len(matches) == 1 {
		acct := matches[0]
		if err := acct.LinkIdentity(externalID); err != nil {
			return importFailed, s.failure(externalID, email, err)
		}
		if acct.DisplayName != identity.DisplayName {
			if err := acct.SetDisplayName(identity.DisplayName); err != nil {
				return importFailed, s.failure(externalID, email, err)
			}
		}
		if err := s.accountRepo.Update(ctx, acct); err != nil {
			s.logger.Error("Failed to link account to identity",
				zap.String("external_id", externalID), zap.Error(err))
			return importFailed, s.failure(externalID, email, err)
		}
		s.logger.Info("Adopted unlinked account",
			zap.String("external_id", externalID),
			zap.String("account_id", acct.ID.String()))
		return importUpdated, nil
	}

	acct, err := account.NewImportedAccount(externalID, identity.Email, identity.DisplayName, account.NormalizeRole(identity.Role))
	if err != nil {
		return importFailed, s.failure(externalID, email, err)
	}
	if err := s.accountRepo.Create(ctx, acct); err != nil {
		// A concurrent import already created this account; the upsert
		// is idempotent so the other run's write stands.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return importUnchanged, nil
		}
		s.logger.Error("Failed to create imported account",
			zap.String("external_id", externalID), zap.Error(err))
		return importFailed, s.failure(externalID, email, err)
	}
	return importCreated, nil
}

func (s *ImportService) failure(externalID, email string, err error) *ImportFailureDTO {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return &ImportFailureDTO{ExternalID: externalID, Email: email, Code: domainErr.Code, Message: domainErr.Message}
	}
	return &ImportFailureDTO{ExternalID: externalID, Email: email, Code: ErrCodeInternal, Message: err.Error()}
}
