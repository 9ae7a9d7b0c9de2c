package reconciliation

import (
	"context"

	"github.com/brightcart/backend/internal/domain/account"
)

const defaultSnapshotPageSize = 200

// StoreSnapshotFetcher pages through the account repository and returns
// the full store-side snapshot for a comparison run. Snapshots are taken
// fresh on every call; nothing is cached between runs.
type StoreSnapshotFetcher struct {
	accountRepo account.Repository
}

// NewStoreSnapshotFetcher creates a new store snapshot fetcher
func NewStoreSnapshotFetcher(accountRepo account.Repository) *StoreSnapshotFetcher {
	return &StoreSnapshotFetcher{accountRepo: accountRepo}
}

// Fetch loads every account, pageSize rows at a time. A pageSize of zero
// or less falls back to the default.
func (f *StoreSnapshotFetcher) Fetch(ctx context.Context, pageSize int) ([]*account.Account, error) {
	if pageSize <= 0 {
		pageSize = defaultSnapshotPageSize
	}

	var accounts []*account.Account
	filter := account.NewFilter()
	filter.PageSize = pageSize
	filter.SortBy = "created_at"
	filter.SortOrder = "asc"

	for page := 1; ; page++ {
		filter.Page = page
		batch, _, err := f.accountRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, batch...)
		if len(batch) < filter.Limit() {
			break
		}
	}

	return accounts, nil
}
