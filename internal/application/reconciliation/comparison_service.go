package reconciliation

import (
	"context"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/integration"
	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComparisonService produces the provider/store diff that drives the
// import and resolution flows. It never writes to either side.
type ComparisonService struct {
	provider integration.IdentityProvider
	store    *StoreSnapshotFetcher
	logger   *zap.Logger
}

// NewComparisonService creates a new comparison service
func NewComparisonService(
	provider integration.IdentityProvider,
	accountRepo account.Repository,
	logger *zap.Logger,
) *ComparisonService {
	return &ComparisonService{
		provider: provider,
		store:    NewStoreSnapshotFetcher(accountRepo),
		logger:   logger,
	}
}

// CompareInput contains input for a comparison run
type CompareInput struct {
	Credential integration.Credential
	PageSize   int
}

// IdentityDTO is the provider-side record as rendered to clients
type IdentityDTO struct {
	ExternalID          string     `json:"external_id"`
	Email               string     `json:"email"`
	DisplayName         string     `json:"display_name"`
	Role                string     `json:"role"`
	CreatedAt           time.Time  `json:"created_at"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
}

// AccountDTO is the store-side record as rendered to clients
type AccountDTO struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  *string   `json:"external_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreOnlyDTO is an account without a provider counterpart, tagged with
// why it is store-only
type StoreOnlyDTO struct {
	Account      AccountDTO `json:"account"`
	Reason       string     `json:"reason"`
	ReapEligible bool       `json:"reap_eligible"`
}

// MatchedPairDTO pairs an identity with the account holding the same
// external id
type MatchedPairDTO struct {
	Identity IdentityDTO `json:"identity"`
	Account  AccountDTO  `json:"account"`
}

// RoleConflictDTO is a matched pair whose roles disagree after
// normalization
type RoleConflictDTO struct {
	ExternalID   string `json:"external_id"`
	Email        string `json:"email"`
	ProviderRole string `json:"provider_role"`
	StoreRole    string `json:"store_role"`
}

// ComparisonSummaryDTO carries the partition counts
type ComparisonSummaryDTO struct {
	ProviderTotal  int `json:"provider_total"`
	StoreTotal     int `json:"store_total"`
	OnlyInProvider int `json:"only_in_provider"`
	OnlyInStore    int `json:"only_in_store"`
	Matched        int `json:"matched"`
	RoleConflicts  int `json:"role_conflicts"`
}

// ComparisonDTO is the full diff between the two systems
type ComparisonDTO struct {
	Summary        ComparisonSummaryDTO `json:"summary"`
	OnlyInProvider []IdentityDTO        `json:"only_in_provider"`
	OnlyInStore    []StoreOnlyDTO       `json:"only_in_store"`
	MatchedPairs   []MatchedPairDTO     `json:"matched_pairs"`
	RoleConflicts  []RoleConflictDTO    `json:"role_conflicts"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// Compare fetches fresh snapshots from both systems and partitions them.
// The provider snapshot is scoped to what the supplied credential can
// see, so an empty OnlyInStore slice is evidence of nothing.
func (s *ComparisonService) Compare(ctx context.Context, input CompareInput) (*ComparisonDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "compare")
	defer span.End()

	if err := input.Credential.Validate(); err != nil {
		return nil, providerError(err)
	}

	identities, err := s.provider.FetchVisibleIdentities(ctx, input.Credential)
	if err != nil {
		s.logger.Error("Failed to fetch provider snapshot", zap.Error(err))
		return nil, providerError(err)
	}

	accounts, err := s.store.Fetch(ctx, input.PageSize)
	if err != nil {
		s.logger.Error("Failed to fetch store snapshot", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to load accounts")
	}

	result := reconciliation.Compare(identities, accounts)

	s.logger.Info("Comparison completed",
		zap.Int("provider_total", len(identities)),
		zap.Int("store_total", len(accounts)),
		zap.Int("role_conflicts", len(result.RoleConflicts)))

	return toComparisonDTO(result, len(identities), len(accounts)), nil
}

// compareSystems runs the same fetch-and-diff but keeps the domain
// result, for services that act on it rather than render it.
func compareSystems(
	ctx context.Context,
	provider integration.IdentityProvider,
	store *StoreSnapshotFetcher,
	cred integration.Credential,
	pageSize int,
) (*reconciliation.ComparisonResult, error) {
	identities, err := provider.FetchVisibleIdentities(ctx, cred)
	if err != nil {
		return nil, providerError(err)
	}
	accounts, err := store.Fetch(ctx, pageSize)
	if err != nil {
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to load accounts")
	}
	return reconciliation.Compare(identities, accounts), nil
}

func toIdentityDTO(identity integration.IdentityRecord) IdentityDTO {
	return IdentityDTO{
		ExternalID:          identity.ExternalID,
		Email:               identity.Email,
		DisplayName:         identity.DisplayName,
		Role:                identity.Role,
		CreatedAt:           identity.CreatedAt,
		LastAuthenticatedAt: identity.LastAuthenticatedAt,
	}
}

func toAccountDTO(acct *account.Account) AccountDTO {
	return AccountDTO{
		ID:          acct.ID,
		ExternalID:  acct.ExternalID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		Role:        string(acct.Role),
		IsActive:    acct.IsActive,
		CreatedAt:   acct.CreatedAt,
	}
}

func toComparisonDTO(result *reconciliation.ComparisonResult, providerTotal, storeTotal int) *ComparisonDTO {
	dto := &ComparisonDTO{
		Summary: ComparisonSummaryDTO{
			ProviderTotal:  providerTotal,
			StoreTotal:     storeTotal,
			OnlyInProvider: len(result.OnlyInProvider),
			OnlyInStore:    len(result.OnlyInStore),
			Matched:        len(result.MatchedPairs),
			RoleConflicts:  len(result.RoleConflicts),
		},
		OnlyInProvider: make([]IdentityDTO, len(result.OnlyInProvider)),
		OnlyInStore:    make([]StoreOnlyDTO, len(result.OnlyInStore)),
		MatchedPairs:   make([]MatchedPairDTO, len(result.MatchedPairs)),
		RoleConflicts:  make([]RoleConflictDTO, len(result.RoleConflicts)),
		GeneratedAt:    time.Now().UTC(),
	}

	for i, identity := range result.OnlyInProvider {
		dto.OnlyInProvider[i] = toIdentityDTO(identity)
	}
	for i, entry := range result.OnlyInStore {
		dto.OnlyInStore[i] = StoreOnlyDTO{
			Account:      toAccountDTO(entry.Account),
			Reason:       entry.Reason.String(),
			ReapEligible: entry.Reason.ReapEligible(),
		}
	}
	for i, pair := range result.MatchedPairs {
		dto.MatchedPairs[i] = MatchedPairDTO{
			Identity: toIdentityDTO(pair.Identity),
			Account:  toAccountDTO(pair.Account),
		}
	}
	for i, conflict := range result.RoleConflicts {
		dto.RoleConflicts[i] = RoleConflictDTO{
			ExternalID:   conflict.ExternalID,
			Email:        conflict.Email,
			ProviderRole: conflict.ProviderRole,
			StoreRole:    string(conflict.StoreRole),
		}
	}

	return dto
}
