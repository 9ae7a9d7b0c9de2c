package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunService reads the reconciliation audit trail
type RunService struct {
	runRepo reconciliation.RunRepository
	logger  *zap.Logger
}

// NewRunService creates a new run service
func NewRunService(runRepo reconciliation.RunRepository, logger *zap.Logger) *RunService {
	return &RunService{runRepo: runRepo, logger: logger}
}

// RunDTO is one persisted reconciliation run
type RunDTO struct {
	ID             uuid.UUID       `json:"id"`
	Operation      string          `json:"operation"`
	Actor          string          `json:"actor"`
	Parameters     json.RawMessage `json:"parameters"`
	TotalCount     int             `json:"total_count"`
	SucceededCount int             `json:"succeeded_count"`
	FailedCount    int             `json:"failed_count"`
	Manifest       json.RawMessage `json:"manifest,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}

// RunListResult is a paginated run listing
type RunListResult struct {
	Runs       []RunDTO `json:"runs"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// GetByID retrieves a run by ID
func (s *RunService) GetByID(ctx context.Context, id uuid.UUID) (*RunDTO, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(ErrCodeNotFound, "Reconciliation run not found")
		}
		s.logger.Error("Failed to find reconciliation run", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to find reconciliation run")
	}
	return toRunDTO(run), nil
}

// List retrieves a paginated list of runs, newest first
func (s *RunService) List(ctx context.Context, filter reconciliation.RunFilter) (*RunListResult, error) {
	runs, total, err := s.runRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list reconciliation runs", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to list reconciliation runs")
	}

	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = *toRunDTO(run)
	}

	return &RunListResult{
		Runs:       dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func toRunDTO(run *reconciliation.Run) *RunDTO {
	dto := &RunDTO{
		ID:             run.ID,
		Operation:      run.Operation.String(),
		Actor:          run.Actor,
		TotalCount:     run.TotalCount,
		SucceededCount: run.SucceededCount,
		FailedCount:    run.FailedCount,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
	}
	if run.Parameters != "" {
		dto.Parameters = json.RawMessage(run.Parameters)
	}
	if run.Manifest != "" {
		dto.Manifest = json.RawMessage(run.Manifest)
	}
	return dto
}
