package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for account persistence
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// Update updates an existing account
	Update(ctx context.Context, account *Account) error

	// Delete permanently removes an account by ID (hard delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteIfOrphanedBefore permanently removes the account only if it is
	// still unlinked and was created before the cutoff. The condition is
	// re-checked inside the delete statement so a concurrent link cannot
	// race the reaper. Returns true when a row was removed.
	DeleteIfOrphanedBefore(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)

	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByExternalID finds the account linked to a provider identity
	FindByExternalID(ctx context.Context, externalID string) (*Account, error)

	// FindByEmail finds an account by normalized email
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindUnlinkedByEmail returns all unlinked accounts with the given
	// normalized email. More than one result means an import match is
	// ambiguous and must not be linked automatically.
	FindUnlinkedByEmail(ctx context.Context, email string) ([]*Account, error)

	// FindAll returns accounts matching the filter with pagination
	FindAll(ctx context.Context, filter Filter) ([]*Account, int64, error)

	// FindOrphanedBefore returns unlinked accounts created before the cutoff,
	// the reap candidate set
	FindOrphanedBefore(ctx context.Context, cutoff time.Time) ([]*Account, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the total number of accounts
	Count(ctx context.Context) (int64, error)

	// CountLinked returns the number of accounts with a provider linkage
	CountLinked(ctx context.Context) (int64, error)

	// CountUnlinked returns the number of accounts without a provider linkage
	CountUnlinked(ctx context.Context) (int64, error)

	// CountByRole returns the number of accounts holding the given role
	CountByRole(ctx context.Context, role Role) (int64, error)

	// CountInactive returns the number of soft-deleted accounts
	CountInactive(ctx context.Context) (int64, error)
}

// Filter contains filter options for querying accounts
type Filter struct {
	// Search keyword for email or display name
	Keyword string

	// Filter by role
	Role *Role

	// Filter by link state: true = linked, false = unlinked
	Linked *bool

	// Filter by active flag
	Active *bool

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewFilter creates a new Filter with default values
func NewFilter() Filter {
	return Filter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f Filter) WithKeyword(keyword string) Filter {
	f.Keyword = keyword
	return f
}

// WithRole sets the role filter
func (f Filter) WithRole(role Role) Filter {
	f.Role = &role
	return f
}

// WithLinked sets the link-state filter
func (f Filter) WithLinked(linked bool) Filter {
	f.Linked = &linked
	return f
}

// WithActive sets the active-flag filter
func (f Filter) WithActive(active bool) Filter {
	f.Active = &active
	return f
}

// WithPagination sets pagination parameters
func (f Filter) WithPagination(page, pageSize int) Filter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// WithSorting sets sorting parameters
func (f Filter) WithSorting(sortBy, sortOrder string) Filter {
	f.SortBy = sortBy
	f.SortOrder = sortOrder
	return f
}

// Offset returns the offset for pagination. It advances by the capped
// limit, not the raw page size, so pages stay contiguous when the cap
// kicks in.
func (f Filter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 500 {
		return 500
	}
	return f.PageSize
}
