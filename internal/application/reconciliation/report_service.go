package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	infra "github.com/brightcart/backend/internal/infrastructure/reporting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService renders a persisted reconciliation run into a printable
// PDF audit report.
type ReportService struct {
	runRepo        reconciliation.RunRepository
	templateEngine *infra.TemplateEngine
	pdfRenderer    infra.PDFRenderer
	logger         *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	runRepo reconciliation.RunRepository,
	templateEngine *infra.TemplateEngine,
	pdfRenderer infra.PDFRenderer,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		runRepo:        runRepo,
		templateEngine: templateEngine,
		pdfRenderer:    pdfRenderer,
		logger:         logger,
	}
}

// ReportDTO is a rendered audit report
type ReportDTO struct {
	FileName string
	PDFData  []byte
}

// runReportData is the template payload. The manifest section matching
// the run's operation is populated; the others stay nil and the template
// skips them.
type runReportData struct {
	Title       string
	Run         *RunDTO
	Import      *ImportResultDTO
	Resolution  *ResolutionResultDTO
	Cleanup     *CleanupResultDTO
	GeneratedAt time.Time
}

// RenderRunReport renders the audit report for one run
func (s *ReportService) RenderRunReport(ctx context.Context, runID uuid.UUID) (*ReportDTO, error) {
	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(ErrCodeNotFound, "Reconciliation run not found")
		}
		s.logger.Error("Failed to find reconciliation run", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to find reconciliation run")
	}

	data := s.buildReportData(run)

	content, err := infra.RunReportTemplate()
	if err != nil {
		s.logger.Error("Report template unavailable", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Report template unavailable")
	}

	html, err := s.templateEngine.RenderString(infra.RunReportTemplateName, content, data)
	if err != nil {
		s.logger.Error("Failed to render report template", zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to render report")
	}

	result, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:       html,
		Title:      data.Title,
		FooterHTML: infra.RunReportFooterHTML,
	})
	if err != nil {
		s.logger.Error("Failed to render report PDF",
			zap.String("run_id", runID.String()), zap.Error(err))
		return nil, shared.NewDomainError(ErrCodeInternal, "Failed to render report PDF")
	}

	return &ReportDTO{
		FileName: fmt.Sprintf("reconciliation-%s-%s.pdf", run.Operation, shortRunID(run.ID)),
		PDFData:  result.PDFData,
	}, nil
}

// buildReportData decodes the run manifest into the section matching its
// operation. A manifest that no longer decodes still yields a report;
// the per-record table is simply absent.
func (s *ReportService) buildReportData(run *reconciliation.Run) *runReportData {
	data := &runReportData{
		Title:       "Identity Reconciliation Report",
		Run:         toRunDTO(run),
		GeneratedAt: time.Now().UTC(),
	}

	if run.Manifest == "" {
		return data
	}

	var decodeErr error
	switch run.Operation {
	case reconciliation.OperationImport:
		var manifest ImportResultDTO
		if decodeErr = json.Unmarshal([]byte(run.Manifest), &manifest); decodeErr == nil {
			data.Import = &manifest
		}
	case reconciliation.OperationResolve:
		var manifest ResolutionResultDTO
		if decodeErr = json.Unmarshal([]byte(run.Manifest), &manifest); decodeErr == nil {
			data.Resolution = &manifest
		}
	case reconciliation.OperationCleanup:
		var manifest CleanupResultDTO
		if decodeErr = json.Unmarshal([]byte(run.Manifest), &manifest); decodeErr == nil {
			data.Cleanup = &manifest
		}
	}
	if decodeErr != nil {
		s.logger.Warn("Run manifest does not decode; report omits per-record detail",
			zap.String("run_id", run.ID.String()), zap.Error(decodeErr))
	}

	return data
}

func shortRunID(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}
