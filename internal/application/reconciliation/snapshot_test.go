package reconciliation

import (
	"context"
	"fmt"
	"testing"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedAccountRepo serves FindAll from an in-memory slice, honoring the
// filter's Offset and Limit the way the real repository does.
type pagedAccountRepo struct {
	MockAccountRepository
	accounts []*account.Account
	calls    int
}

func (r *pagedAccountRepo) FindAll(_ context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	r.calls++
	total := int64(len(r.accounts))
	offset := filter.Offset()
	if offset >= len(r.accounts) {
		return nil, total, nil
	}
	end := offset + filter.Limit()
	if end > len(r.accounts) {
		end = len(r.accounts)
	}
	return r.accounts[offset:end], total, nil
}

func seedAccounts(t *testing.T, n int) []*account.Account {
	t.Helper()
	accounts := make([]*account.Account, 0, n)
	for i := 0; i < n; i++ {
		acct, err := account.NewAccount(fmt.Sprintf("shopper%04d@example.com", i), "Shopper")
		require.NoError(t, err)
		accounts = append(accounts, acct)
	}
	return accounts
}

func TestStoreSnapshotFetcher_Fetch(t *testing.T) {
	t.Run("returns every account across pages", func(t *testing.T) {
		repo := &pagedAccountRepo{accounts: seedAccounts(t, 450)}
		fetcher := NewStoreSnapshotFetcher(repo)

		accounts, err := fetcher.Fetch(context.Background(), 200)

		require.NoError(t, err)
		assert.Len(t, accounts, 450)
	})

	t.Run("page size above the repository cap loses no accounts", func(t *testing.T) {
		repo := &pagedAccountRepo{accounts: seedAccounts(t, 700)}
		fetcher := NewStoreSnapshotFetcher(repo)

		accounts, err := fetcher.Fetch(context.Background(), 1000)

		require.NoError(t, err)
		require.Len(t, accounts, 700)

		seen := make(map[string]bool, len(accounts))
		for _, acct := range accounts {
			assert.False(t, seen[acct.Email], "account %s returned twice", acct.Email)
			seen[acct.Email] = true
		}
	})

	t.Run("zero page size falls back to the default", func(t *testing.T) {
		repo := &pagedAccountRepo{accounts: seedAccounts(t, 250)}
		fetcher := NewStoreSnapshotFetcher(repo)

		accounts, err := fetcher.Fetch(context.Background(), 0)

		require.NoError(t, err)
		assert.Len(t, accounts, 250)
		assert.Equal(t, 2, repo.calls)
	})

	t.Run("exact page boundary terminates", func(t *testing.T) {
		repo := &pagedAccountRepo{accounts: seedAccounts(t, 400)}
		fetcher := NewStoreSnapshotFetcher(repo)

		accounts, err := fetcher.Fetch(context.Background(), 200)

		require.NoError(t, err)
		assert.Len(t, accounts, 400)
		assert.Equal(t, 3, repo.calls)
	})
}
