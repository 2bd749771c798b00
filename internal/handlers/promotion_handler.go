package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type PromotionHandler struct {
	BaseHandler
	promotionService services.PromotionService
}

func NewPromotionHandler(promotionService services.PromotionService, logger utils.Logger) *PromotionHandler {
	return &PromotionHandler{
		BaseHandler:      NewBaseHandler(logger),
		promotionService: promotionService,
	}
}

// SubmitRequest opens a reviewer-role request
// @Summary Submit reviewer request
// @Description Ask to be promoted to the reviewer role (students only)
// @Tags promotions
// @Accept json
// @Produce json
// @Param request body services.CreatePromotionRequest true "Justification"
// @Success 201 {object} services.RequestResponse "Submitted request"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Already a reviewer or a pending request exists"
// @Router /promotions [post]
func (h *PromotionHandler) SubmitRequest(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting reviewer request", "user_id", userID)

	request, err := h.promotionService.SubmitRequest(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to submit reviewer request")
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListPending lists undecided reviewer requests
// @Summary List pending requests
// @Description Get all pending reviewer requests oldest first (instructor, staff or admin)
// @Tags promotions
// @Produce json
// @Success 200 {object} map[string]interface{} "Pending requests"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /promotions/pending [get]
func (h *PromotionHandler) ListPending(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	requests, err := h.promotionService.ListPending(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list pending requests")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetMyRequests lists the caller's own reviewer requests
// @Summary List own requests
// @Description Get the caller's reviewer requests newest first
// @Tags promotions
// @Produce json
// @Success 200 {object} map[string]interface{} "Requests"
// @Router /promotions/mine [get]
func (h *PromotionHandler) GetMyRequests(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	requests, err := h.promotionService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get requests")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    len(requests),
	})
}

// Approve grants a pending reviewer request
// @Summary Approve request
// @Description Approve a pending reviewer request, granting the role and creating a reviewer profile
// @Tags promotions
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body services.PromotionDecisionRequest true "Optional comments"
// @Success 200 {object} services.RequestResponse "Decided request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 409 {object} ErrorResponse "Request already decided"
// @Router /promotions/{id}/approve [post]
func (h *PromotionHandler) Approve(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.PromotionDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Approving reviewer request", "request_id", id)

	request, err := h.promotionService.Approve(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to approve request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// Reject declines a pending reviewer request
// @Summary Reject request
// @Description Reject a pending reviewer request; comments are mandatory
// @Tags promotions
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body services.PromotionDecisionRequest true "Comments (required)"
// @Success 200 {object} services.RequestResponse "Decided request"
// @Failure 400 {object} ErrorResponse "Missing comments"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 409 {object} ErrorResponse "Request already decided"
// @Router /promotions/{id}/reject [post]
func (h *PromotionHandler) Reject(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.PromotionDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Rejecting reviewer request", "request_id", id)

	request, err := h.promotionService.Reject(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to reject request")
		return
	}

	c.JSON(http.StatusOK, request)
}
