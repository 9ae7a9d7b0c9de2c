package reconciliation

import (
	"context"
	"time"

	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Operation identifies which reconciliation write path a run executed
type Operation string

const (
	OperationImport  Operation = "import"
	OperationResolve Operation = "resolve"
	OperationCleanup Operation = "cleanup"
)

// IsValid returns true if the operation is one of the defined values
func (o Operation) IsValid() bool {
	switch o {
	case OperationImport, OperationResolve, OperationCleanup:
		return true
	}
	return false
}

// String returns the string representation of the operation
func (o Operation) String() string {
	return string(o)
}

// Run is the persisted audit record of one reconciliation write
// operation: who triggered it, with what parameters, and what happened
// to every record it touched. Batches never abort on a per-record
// failure, so a run always carries both success and failure counts.
type Run struct {
	shared.BaseAggregateRoot
	Operation      Operation
	Actor          string // external_id of the operator who triggered the run
	Parameters     string // JSON-encoded call parameters
	TotalCount     int
	SucceededCount int
	FailedCount    int
	Manifest       string // JSON-encoded per-record outcomes (audit manifest)
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// NewRun starts an audit record for a reconciliation operation
func NewRun(operation Operation, actor, parameters string) (*Run, error) {
	if !operation.IsValid() {
		return nil, shared.NewDomainError("INVALID_OPERATION", "Unknown reconciliation operation")
	}

	return &Run{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Operation:         operation,
		Actor:             actor,
		Parameters:        parameters,
		StartedAt:         time.Now(),
	}, nil
}

// Finish records the outcome counts and the audit manifest
func (r *Run) Finish(total, succeeded, failed int, manifest string) {
	now := time.Now()
	r.TotalCount = total
	r.SucceededCount = succeeded
	r.FailedCount = failed
	r.Manifest = manifest
	r.FinishedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
}

// RunRepository defines the interface for reconciliation run persistence
type RunRepository interface {
	// Create persists a finished run record
	Create(ctx context.Context, run *Run) error

	// FindByID finds a run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// FindAll returns runs matching the filter, newest first
	FindAll(ctx context.Context, filter RunFilter) ([]*Run, int64, error)
}

// RunFilter contains filter options for querying runs
type RunFilter struct {
	// Filter by operation
	Operation *Operation

	// Filter by actor external_id
	Actor string

	// Pagination
	Page     int
	PageSize int
}

// NewRunFilter creates a new RunFilter with default values
func NewRunFilter() RunFilter {
	return RunFilter{
		Page:     1,
		PageSize: 20,
	}
}

// WithOperation sets the operation filter
func (f RunFilter) WithOperation(operation Operation) RunFilter {
	f.Operation = &operation
	return f
}

// WithActor sets the actor filter
func (f RunFilter) WithActor(actor string) RunFilter {
	f.Actor = actor
	return f
}

// WithPagination sets pagination parameters
func (f RunFilter) WithPagination(page, pageSize int) RunFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f RunFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f RunFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
