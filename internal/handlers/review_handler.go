package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// CreateReview attaches a critique to a question or answer
// @Summary Create review
// @Description Post a review targeting exactly one question or answer (reviewer role required)
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body services.CreateReviewRequest true "Review data"
// @Success 201 {object} services.ReviewResponse "Created review"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Subject not found"
// @Failure 409 {object} ErrorResponse "Duplicate review"
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating review", "user_id", userID)

	review, err := h.reviewService.CreateReview(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetReview retrieves a review by ID
// @Summary Get review
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} services.ReviewResponse "Review"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /reviews/{id} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get review")
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetReviewsForQuestion lists reviews targeting a question
// @Summary List question reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]interface{} "Review list"
// @Router /questions/{id}/reviews [get]
func (h *ReviewHandler) GetReviewsForQuestion(c *gin.Context) {
	questionID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetReviewsForQuestion(c.Request.Context(), questionID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetReviewsForAnswer lists reviews targeting an answer
// @Summary List answer reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} map[string]interface{} "Review list"
// @Router /answers/{id}/reviews [get]
func (h *ReviewHandler) GetReviewsForAnswer(c *gin.Context) {
	answerID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetReviewsForAnswer(c.Request.Context(), answerID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetReviewsByReviewer lists a reviewer's reviews
// @Summary List reviewer's reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Reviewer ID"
// @Success 200 {object} map[string]interface{} "Review list"
// @Router /reviewers/{id}/reviews [get]
func (h *ReviewHandler) GetReviewsByReviewer(c *gin.Context) {
	reviewerID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetReviewsByReviewer(c.Request.Context(), reviewerID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// UpdateReview rewrites the caller's own review
// @Summary Update review
// @Description Rewrite a review's text (owning reviewer only)
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body services.UpdateReviewRequest true "New content"
// @Success 200 {object} services.ReviewResponse "Updated review"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating review", "review_id", id)

	review, err := h.reviewService.UpdateReview(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview removes the caller's own review
// @Summary Delete review
// @Description Delete a review (owning reviewer only)
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting review", "review_id", id)

	if err := h.reviewService.DeleteReview(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete review")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetReviewerProfile returns a user's reviewer profile
// @Summary Get reviewer profile
// @Tags reviewers
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Reviewer "Reviewer profile"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id}/reviewer [get]
func (h *ReviewHandler) GetReviewerProfile(c *gin.Context) {
	userID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	reviewer, err := h.reviewService.GetReviewerByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get reviewer profile")
		return
	}

	c.JSON(http.StatusOK, reviewer)
}

// UpdateWeight adjusts a reviewer's scoring weight
// @Summary Update reviewer weight
// @Description Adjust a reviewer's scoring weight (instructor, staff or admin)
// @Tags reviewers
// @Accept json
// @Produce json
// @Param id path int true "Reviewer ID"
// @Param request body services.UpdateWeightRequest true "New weight"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /reviewers/{id}/weight [put]
func (h *ReviewHandler) UpdateWeight(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	reviewerID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating reviewer weight", "reviewer_id", reviewerID, "weight", req.Weight)

	if err := h.reviewService.UpdateWeight(c.Request.Context(), reviewerID, &req, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to update reviewer weight")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"weight": req.Weight})
}
