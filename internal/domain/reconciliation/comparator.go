package reconciliation

import (
	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/integration"
)

// StoreOnlyReason explains why an account has no counterpart in the
// provider snapshot. The two cases must stay distinguishable: only a
// never-linked account is ever a cleanup candidate, while a stale link
// may simply be outside the snapshot's visibility.
type StoreOnlyReason string

const (
	// StoreOnlyReasonNeverLinked marks an account whose external_id is null
	StoreOnlyReasonNeverLinked StoreOnlyReason = "never_linked"
	// StoreOnlyReasonStaleLink marks an account whose external_id is set
	// but absent from the provider snapshot
	StoreOnlyReasonStaleLink StoreOnlyReason = "stale_link"
)

// IsValid returns true if the reason is one of the defined values
func (r StoreOnlyReason) IsValid() bool {
	switch r {
	case StoreOnlyReasonNeverLinked, StoreOnlyReasonStaleLink:
		return true
	}
	return false
}

// String returns the string representation of the reason
func (r StoreOnlyReason) String() string {
	return string(r)
}

// ReapEligible reports whether accounts in this state may later be
// selected by cleanup, once old enough. A stale link is never eligible:
// the identity may exist beyond the snapshot's visibility.
func (r StoreOnlyReason) ReapEligible() bool {
	return r == StoreOnlyReasonNeverLinked
}

// MatchedPair is an identity and the account linked to it by external_id
type MatchedPair struct {
	Identity integration.IdentityRecord
	Account  *account.Account
}

// RoleConflict is derived from a matched pair whose role values disagree
// after normalization. Both raw values are retained for operator
// inspection; nothing here mutates either side.
type RoleConflict struct {
	ExternalID   string
	Email        string
	ProviderRole string
	StoreRole    account.Role
}

// StoreOnlyAccount is an account with no counterpart in the provider
// snapshot, tagged with the reason
type StoreOnlyAccount struct {
	Account *account.Account
	Reason  StoreOnlyReason
}

// ComparisonResult partitions the two snapshots. Every identity lands in
// exactly one of OnlyInProvider or MatchedPairs, and every account in
// exactly one of OnlyInStore or MatchedPairs.
type ComparisonResult struct {
	OnlyInProvider []integration.IdentityRecord
	OnlyInStore    []StoreOnlyAccount
	MatchedPairs   []MatchedPair
	RoleConflicts  []RoleConflict
}

// HasConflicts reports whether any role conflicts were detected
func (r *ComparisonResult) HasConflicts() bool {
	return len(r.RoleConflicts) > 0
}

// Compare partitions a provider snapshot and a store snapshot. It is
// pure: it classifies records and never mutates them. Ordering is
// stable. Matched pairs and store-only entries follow account input
// order, provider-only entries follow identity input order.
func Compare(identities []integration.IdentityRecord, accounts []*account.Account) *ComparisonResult {
	identityByID := make(map[string]integration.IdentityRecord, len(identities))
	for _, identity := range identities {
		identityByID[identity.ExternalID] = identity
	}

	result := &ComparisonResult{
		OnlyInProvider: make([]integration.IdentityRecord, 0),
		OnlyInStore:    make([]StoreOnlyAccount, 0),
		MatchedPairs:   make([]MatchedPair, 0),
		RoleConflicts:  make([]RoleConflict, 0),
	}

	matched := make(map[string]bool, len(identities))

	for _, acct := range accounts {
		if !acct.IsLinked() {
			result.OnlyInStore = append(result.OnlyInStore, StoreOnlyAccount{
				Account: acct,
				Reason:  StoreOnlyReasonNeverLinked,
			})
			continue
		}

		externalID := *acct.ExternalID
		identity, ok := identityByID[externalID]
		if !ok {
			result.OnlyInStore = append(result.OnlyInStore, StoreOnlyAccount{
				Account: acct,
				Reason:  StoreOnlyReasonStaleLink,
			})
			continue
		}

		matched[externalID] = true
		result.MatchedPairs = append(result.MatchedPairs, MatchedPair{
			Identity: identity,
			Account:  acct,
		})

		if account.NormalizeRole(identity.Role) != acct.Role {
			result.RoleConflicts = append(result.RoleConflicts, RoleConflict{
				ExternalID:   externalID,
				Email:        acct.Email,
				ProviderRole: identity.Role,
				StoreRole:    acct.Role,
			})
		}
	}

	for _, identity := range identities {
		if !matched[identity.ExternalID] {
			result.OnlyInProvider = append(result.OnlyInProvider, identity)
		}
	}

	return result
}
