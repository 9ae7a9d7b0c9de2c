package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements account.Repository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create creates a new account. A unique violation on email or
// external_id comes back as shared.ErrAlreadyExists so callers can treat
// the losing side of a concurrent insert as benign.
func (r *GormAccountRepository) Create(ctx context.Context, acct *account.Account) error {
	model := models.AccountModelFromDomain(acct)
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error)
}

// Update updates an existing account
func (r *GormAccountRepository) Update(ctx context.Context, acct *account.Account) error {
	model := models.AccountModelFromDomain(acct)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete permanently removes an account by ID
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteIfOrphanedBefore removes the account only if it is still unlinked
// and older than the cutoff. The guard lives in the WHERE clause so a link
// committed between candidate selection and deletion keeps the row.
func (r *GormAccountRepository) DeleteIfOrphanedBefore(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND external_id IS NULL AND created_at < ?", id, cutoff).
		Delete(&models.AccountModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds the account linked to a provider identity
func (r *GormAccountRepository) FindByExternalID(ctx context.Context, externalID string) (*account.Account, error) {
	if externalID == "" {
		return nil, shared.ErrNotFound
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an account by normalized email
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", account.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnlinkedByEmail returns all unlinked accounts with the given email.
// The caller treats more than one match as ambiguous.
func (r *GormAccountRepository) FindUnlinkedByEmail(ctx context.Context, email string) ([]*account.Account, error) {
	if email == "" {
		return nil, nil
	}
	var accountModels []*models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("external_id IS NULL AND email = ?", account.NormalizeEmail(email)).
		Order("created_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]*account.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = model.ToDomain()
	}
	return accounts, nil
}

// FindAll returns accounts matching the filter with pagination
func (r *GormAccountRepository) FindAll(ctx context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	var accountModels []*models.AccountModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AccountModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.SortBy, AccountSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]*account.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = model.ToDomain()
	}
	return accounts, total, nil
}

// FindOrphanedBefore returns unlinked accounts created before the cutoff
func (r *GormAccountRepository) FindOrphanedBefore(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	var accountModels []*models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("external_id IS NULL AND created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]*account.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = model.ToDomain()
	}
	return accounts, nil
}

// ExistsByEmail checks if an email is already registered
func (r *GormAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("email = ?", account.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the total number of accounts
func (r *GormAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLinked returns the number of accounts with a provider linkage
func (r *GormAccountRepository) CountLinked(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("external_id IS NOT NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountUnlinked returns the number of accounts without a provider linkage
func (r *GormAccountRepository) CountUnlinked(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("external_id IS NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByRole returns the number of accounts holding the given role
func (r *GormAccountRepository) CountByRole(ctx context.Context, role account.Role) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountInactive returns the number of soft-deleted accounts
func (r *GormAccountRepository) CountInactive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("is_active = ?", false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAccountRepository) applyFilter(query *gorm.DB, filter account.Filter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where("email ILIKE ? OR display_name ILIKE ?", searchPattern, searchPattern)
	}

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	if filter.Linked != nil {
		if *filter.Linked {
			query = query.Where("external_id IS NOT NULL")
		} else {
			query = query.Where("external_id IS NULL")
		}
	}

	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	return query
}

// Ensure GormAccountRepository implements account.Repository
var _ account.Repository = (*GormAccountRepository)(nil)
