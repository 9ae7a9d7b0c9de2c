package handler

import (
	accountapp "github.com/brightcart/backend/internal/application/account"
	"github.com/brightcart/backend/internal/domain/account"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles account-related API endpoints
type AccountHandler struct {
	BaseHandler
	accountService *accountapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *accountapp.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// SignupRequest represents a self-service account signup request
// @Description Request body for creating a new storefront account
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email,max=320" example:"jane@example.com"`
	DisplayName string `json:"display_name" binding:"max=200" example:"Jane Doe"`
}

// UpdateAccountRequest represents a request to update an account's profile
// @Description Request body for updating an account
type UpdateAccountRequest struct {
	Email       *string `json:"email" binding:"omitempty,email,max=320" example:"jane@example.com"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=200" example:"Jane D."`
}

// ChangeRoleRequest represents a request to change an account's role
// @Description Request body for changing an account's business role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=administrator standard" example:"administrator"`
}

// ListAccountsRequest represents query parameters for listing accounts
// @Description Query parameters for the account listing endpoint
type ListAccountsRequest struct {
	Keyword   string `form:"keyword" binding:"omitempty,max=200"`
	Role      string `form:"role" binding:"omitempty,oneof=administrator standard"`
	Linked    *bool  `form:"linked"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=email display_name created_at updated_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// Signup godoc
// @ID           signupAccount
// @Summary      Create a storefront account
// @Description  Self-service signup. The account starts unlinked and with the standard role; linkage happens on import or first resolution.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup request"
// @Success      201 {object} APIResponse[accountapp.AccountDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /accounts/signup [post]
func (h *AccountHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	acct, err := h.accountService.Signup(c.Request.Context(), accountapp.SignupInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, acct)
}

// GetProfile godoc
// @ID           getOwnProfile
// @Summary      Get own profile
// @Description  Returns the store account linked to the caller's provider identity
// @Tags         accounts
// @Produce      json
// @Success      200 {object} APIResponse[accountapp.AccountDTO]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [get]
func (h *AccountHandler) GetProfile(c *gin.Context) {
	externalID, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	acct, err := h.accountService.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, acct)
}

// List godoc
// @ID           listAccounts
// @Summary      List accounts
// @Description  Returns a paginated account listing with optional role, link state and active filters
// @Tags         accounts
// @Produce      json
// @Param        keyword query string false "Search keyword for email or display name"
// @Param        role query string false "Filter by role" Enums(administrator, standard)
// @Param        linked query bool false "Filter by link state"
// @Param        active query bool false "Filter by active flag"
// @Param        page query int false "Page number (default 1)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} APIResponse[accountapp.AccountListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var req ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := account.Filter{}.
		WithKeyword(req.Keyword).
		WithPagination(req.Page, req.PageSize).
		WithSorting(req.SortBy, req.SortOrder)
	if req.Role != "" {
		filter = filter.WithRole(account.Role(req.Role))
	}
	if req.Linked != nil {
		filter = filter.WithLinked(*req.Linked)
	}
	if req.Active != nil {
		filter = filter.WithActive(*req.Active)
	}

	result, err := h.accountService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Accounts, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getAccount
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} APIResponse[accountapp.AccountDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts/{id} [get]
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	acct, err := h.accountService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, acct)
}

// Update godoc
// @ID           updateAccount
// @Summary      Update an account's profile fields
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID"
// @Param        request body UpdateAccountRequest true "Update request"
// @Success      200 {object} APIResponse[accountapp.AccountDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	acct, err := h.accountService.Update(c.Request.Context(), accountapp.UpdateAccountInput{
		ID:          id,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, acct)
}

// ChangeRole godoc
// @ID           changeAccountRole
// @Summary      Change an account's business role
// @Description  The store is the system of record for roles; this is the only write path. A subsequent resolution run pushes the new role to the provider.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID"
// @Param        request body ChangeRoleRequest true "Role change request"
// @Success      200 {object} APIResponse[accountapp.AccountDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts/{id}/role [put]
func (h *AccountHandler) ChangeRole(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	acct, err := h.accountService.ChangeRole(c.Request.Context(), id, account.Role(req.Role))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, acct)
}

// Deactivate godoc
// @ID           deactivateAccount
// @Summary      Deactivate an account
// @Description  Soft delete. The row keeps its provider linkage and stays visible to reconciliation.
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} APIResponse[accountapp.AccountDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts/{id}/deactivate [post]
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	acct, err := h.accountService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, acct)
}

// Reactivate godoc
// @ID           reactivateAccount
// @Summary      Reactivate a deactivated account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} APIResponse[accountapp.AccountDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts/{id}/reactivate [post]
func (h *AccountHandler) Reactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	acct, err := h.accountService.Reactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, acct)
}

// Delete godoc
// @ID           deleteAccount
// @Summary      Permanently delete an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
