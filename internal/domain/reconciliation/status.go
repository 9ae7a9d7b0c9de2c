package reconciliation

import "time"

// SyncStatus is the aggregate view over current account state, derived
// live on every request. It is never cached.
type SyncStatus struct {
	// TotalAccounts is the total number of store accounts
	TotalAccounts int64
	// LinkedAccounts is the number of accounts with a provider linkage
	LinkedAccounts int64
	// UnlinkedAccounts is the number of accounts without a provider linkage
	UnlinkedAccounts int64
	// AdministratorCount is the number of accounts holding the administrator role
	AdministratorCount int64
	// DeactivatedAccounts is the number of soft-deleted accounts
	DeactivatedAccounts int64
	// GeneratedAt is when the status was computed
	GeneratedAt time.Time
}
