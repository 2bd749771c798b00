package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetCurrentUser returns the authenticated account
// @Summary Get current user
// @Description Get the account behind the session token
// @Tags users
// @Produce json
// @Success 200 {object} services.UserResponse "Account"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser retrieves a user by ID
// @Summary Get user
// @Description Get a single account by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserResponse "Account"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists accounts with optional filtering
// @Summary List users
// @Description Get a paginated list of accounts, optionally filtered by role or name
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (user name)"
// @Param role query string false "Filter by role (admin, student, instructor, staff, reviewer)"
// @Success 200 {object} services.UserListResponse "User list"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)

	response, err := h.userService.List(c.Request.Context(), filters, actorID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateRoles replaces a user's role set
// @Summary Update user roles
// @Description Replace the role set of an account (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body services.UpdateRolesRequest true "New role set"
// @Success 200 {object} services.UserResponse "Updated account"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Would remove the last admin"
// @Router /users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating user roles", "user_id", id)

	user, err := h.userService.UpdateRoles(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to update roles")
		return
	}

	c.JSON(http.StatusOK, user)
}

// SetOneTimePassword issues a one-time login code for a user
// @Summary Issue one-time password
// @Description Generate a one-time login code for an account and force a reset (admin only)
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{} "One-time code"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id}/one-time-password [post]
func (h *UserHandler) SetOneTimePassword(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Issuing one-time password", "user_id", id)

	code, err := h.userService.SetOneTimePassword(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to issue one-time password")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"one_time_code": code})
}

// CreateInvitation mints an invitation code
// @Summary Create invitation
// @Description Mint a single-use invitation code carrying initial roles (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.InvitationCreateRequest true "Roles to grant"
// @Success 201 {object} services.InvitationResponse "Invitation"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /invitations [post]
func (h *UserHandler) CreateInvitation(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.InvitationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating invitation", "roles", req.Roles)

	invitation, err := h.userService.CreateInvitation(c.Request.Context(), &req, actorID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to create invitation")
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

// DeleteUser removes an account
// @Summary Delete user
// @Description Delete an account that owns no content (admin only)
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 409 {object} ErrorResponse "User still owns content or is the last admin"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting user", "user_id", id)

	if err := h.userService.Delete(c.Request.Context(), id, actorID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	limit, offset := h.ParsePagination(c)

	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.Role(roleStr)
		filters.Role = &role
	}

	return filters
}
