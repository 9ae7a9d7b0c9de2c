package handler

import (
	"fmt"
	"net/http"

	reconapp "github.com/brightcart/backend/internal/application/reconciliation"
	"github.com/brightcart/backend/internal/domain/integration"
	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/infrastructure/config"
	"github.com/brightcart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReconciliationHandler handles the identity reconciliation API endpoints
type ReconciliationHandler struct {
	BaseHandler
	statusService     *reconapp.StatusService
	comparisonService *reconapp.ComparisonService
	importService     *reconapp.ImportService
	resolutionService *reconapp.ResolutionService
	cleanupService    *reconapp.CleanupService
	runService        *reconapp.RunService
	reportService     *reconapp.ReportService
	providerCfg       config.ProviderConfig
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(
	statusService *reconapp.StatusService,
	comparisonService *reconapp.ComparisonService,
	importService *reconapp.ImportService,
	resolutionService *reconapp.ResolutionService,
	cleanupService *reconapp.CleanupService,
	runService *reconapp.RunService,
	reportService *reconapp.ReportService,
	providerCfg config.ProviderConfig,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		statusService:     statusService,
		comparisonService: comparisonService,
		importService:     importService,
		resolutionService: resolutionService,
		cleanupService:    cleanupService,
		runService:        runService,
		reportService:     reportService,
		providerCfg:       providerCfg,
	}
}

// credential picks the provider credential for this request. The
// configured service token sees the whole directory; without one the
// run degrades to the identities visible to the caller's own token.
func (h *ReconciliationHandler) credential(c *gin.Context) integration.Credential {
	if h.providerCfg.ServiceToken != "" {
		return integration.Credential{
			AccessToken: h.providerCfg.ServiceToken,
			Privileged:  true,
		}
	}
	return integration.Credential{
		AccessToken: middleware.GetBearerToken(c),
	}
}

// CompareRequest represents query parameters for the comparison endpoint
// @Description Query parameters for the reconciliation comparison
type CompareRequest struct {
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// CleanupRequest represents a request for a cleanup run
// @Description Request body for removing aged orphaned accounts
type CleanupRequest struct {
	RetentionDays int  `json:"retention_days" binding:"required,min=1" example:"30"`
	DryRun        bool `json:"dry_run" example:"true"`
}

// ListRunsRequest represents query parameters for listing runs
// @Description Query parameters for the reconciliation run listing
type ListRunsRequest struct {
	Operation string `form:"operation" binding:"omitempty,oneof=import resolve cleanup"`
	Actor     string `form:"actor" binding:"omitempty,max=200"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetStatus godoc
// @ID           getReconciliationStatus
// @Summary      Reconciliation status counters
// @Description  Aggregates current account counters: total, linked, unlinked, administrators, deactivated
// @Tags         reconciliation
// @Produce      json
// @Success      200 {object} APIResponse[reconapp.StatusDTO]
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/status [get]
func (h *ReconciliationHandler) GetStatus(c *gin.Context) {
	status, err := h.statusService.GetStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// Compare godoc
// @ID           getReconciliationComparison
// @Summary      Diff provider identities against store accounts
// @Description  Fetches fresh snapshots from both systems and partitions them into only-in-provider, only-in-store, matched and role-conflict sets
// @Tags         reconciliation
// @Produce      json
// @Param        page_size query int false "Store snapshot page size"
// @Success      200 {object} APIResponse[reconapp.ComparisonDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/comparison [get]
func (h *ReconciliationHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.comparisonService.Compare(c.Request.Context(), reconapp.CompareInput{
		Credential: h.credential(c),
		PageSize:   req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Import godoc
// @ID           runReconciliationImport
// @Summary      Import provider identities into the store
// @Description  Upserts a store account for each identity visible to the credential. Never touches roles of existing accounts. Individual failures do not abort the batch.
// @Tags         reconciliation
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Success      200 {object} APIResponse[reconapp.ImportResultDTO]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/import [post]
func (h *ReconciliationHandler) Import(c *gin.Context) {
	externalID, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.importService.Import(c.Request.Context(), reconapp.ImportInput{
		Credential: h.credential(c),
		Actor:      externalID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ResolveConflicts godoc
// @ID           resolveReconciliationConflicts
// @Summary      Resolve all role conflicts
// @Description  Diffs the two systems and pushes the store role to the provider for every conflicting identity. The store always wins.
// @Tags         reconciliation
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Success      200 {object} APIResponse[reconapp.ResolutionResultDTO]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/conflicts/resolve [post]
func (h *ReconciliationHandler) ResolveConflicts(c *gin.Context) {
	externalID, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.resolutionService.ResolveAll(c.Request.Context(), reconapp.ResolveInput{
		Credential: h.credential(c),
		Actor:      externalID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ResolveOne godoc
// @ID           resolveReconciliationConflict
// @Summary      Resolve role conflict for a single identity
// @Tags         reconciliation
// @Produce      json
// @Param        external_id path string true "Provider identity ID"
// @Success      200 {object} APIResponse[reconapp.ResolutionResultDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/conflicts/{external_id}/resolve [post]
func (h *ReconciliationHandler) ResolveOne(c *gin.Context) {
	actor, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	target := c.Param("external_id")
	if target == "" {
		h.BadRequest(c, "external_id is required")
		return
	}

	result, err := h.resolutionService.ResolveOne(c.Request.Context(), reconapp.ResolveOneInput{
		Credential: h.credential(c),
		Actor:      actor,
		ExternalID: target,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ResolveSelf godoc
// @ID           resolveOwnIdentity
// @Summary      Resolve the caller's own identity
// @Description  Self-service variant of single-identity resolution, scoped to the authenticated identity and using the caller's own credential
// @Tags         reconciliation
// @Produce      json
// @Success      200 {object} APIResponse[reconapp.ResolutionResultDTO]
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile/resolve [post]
func (h *ReconciliationHandler) ResolveSelf(c *gin.Context) {
	externalID, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	// Always the caller's own token here: self-resolution must not see
	// more than the caller can.
	result, err := h.resolutionService.ResolveOne(c.Request.Context(), reconapp.ResolveOneInput{
		Credential: integration.Credential{AccessToken: middleware.GetBearerToken(c)},
		Actor:      externalID,
		ExternalID: externalID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cleanup godoc
// @ID           runReconciliationCleanup
// @Summary      Remove aged orphaned accounts
// @Description  Deletes accounts that never linked to a provider identity and are older than the retention window. Linked accounts are never candidates.
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body CleanupRequest true "Cleanup parameters"
// @Success      200 {object} APIResponse[reconapp.CleanupResultDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/cleanup [post]
func (h *ReconciliationHandler) Cleanup(c *gin.Context) {
	externalID, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.cleanupService.Cleanup(c.Request.Context(), reconapp.CleanupInput{
		RetentionDays: req.RetentionDays,
		DryRun:        req.DryRun,
		Actor:         externalID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListRuns godoc
// @ID           listReconciliationRuns
// @Summary      List reconciliation runs
// @Tags         reconciliation
// @Produce      json
// @Param        operation query string false "Filter by operation" Enums(import, resolve, cleanup)
// @Param        actor query string false "Filter by actor external_id"
// @Param        page query int false "Page number (default 1)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} APIResponse[reconapp.RunListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/runs [get]
func (h *ReconciliationHandler) ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := reconciliation.NewRunFilter()
	if req.Operation != "" {
		op := reconciliation.Operation(req.Operation)
		filter.Operation = &op
	}
	filter.Actor = req.Actor
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	result, err := h.runService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Runs, result.Total, result.Page, result.PageSize)
}

// GetRun godoc
// @ID           getReconciliationRun
// @Summary      Get a reconciliation run
// @Tags         reconciliation
// @Produce      json
// @Param        id path string true "Run ID"
// @Success      200 {object} APIResponse[reconapp.RunDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/runs/{id} [get]
func (h *ReconciliationHandler) GetRun(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	run, err := h.runService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, run)
}

// ExportRunReport godoc
// @ID           exportReconciliationRunReport
// @Summary      Export a reconciliation run as a PDF report
// @Description  Renders the run's manifest through the report template and returns the PDF
// @Tags         reconciliation
// @Produce      application/pdf
// @Param        id path string true "Run ID"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reconciliation/runs/{id}/report [get]
func (h *ReconciliationHandler) ExportRunReport(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	report, err := h.reportService.RenderRunReport(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, "application/pdf", report.PDFData)
}
