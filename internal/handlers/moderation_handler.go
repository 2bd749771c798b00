package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type ModerationHandler struct {
	BaseHandler
	moderationService services.ModerationService
	exportService     services.ExportService
}

func NewModerationHandler(moderationService services.ModerationService, exportService services.ExportService, logger utils.Logger) *ModerationHandler {
	return &ModerationHandler{
		BaseHandler:       NewBaseHandler(logger),
		moderationService: moderationService,
		exportService:     exportService,
	}
}

// DeleteQuestion removes any question
// @Summary Moderator delete question
// @Description Delete any question regardless of ownership (instructor, staff or admin)
// @Tags moderation
// @Produce json
// @Param id path int true "Question ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /moderation/questions/{id} [delete]
func (h *ModerationHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Moderator deleting question", "question_id", id)

	if err := h.moderationService.DeleteQuestion(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete question")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAnswer removes any answer
// @Summary Moderator delete answer
// @Description Delete any answer regardless of ownership (instructor, staff or admin)
// @Tags moderation
// @Produce json
// @Param id path int true "Answer ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /moderation/answers/{id} [delete]
func (h *ModerationHandler) DeleteAnswer(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Moderator deleting answer", "answer_id", id)

	if err := h.moderationService.DeleteAnswer(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete answer")
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleClarification flags any answer as needing clarification
// @Summary Moderator toggle clarification flag
// @Description Set or clear the needs-clarification flag on any answer regardless of question ownership (instructor, staff or admin)
// @Tags moderation
// @Produce json
// @Param id path int true "Answer ID"
// @Param flag query bool false "Flag value (default: true)"
// @Success 200 {object} map[string]interface{} "Flag state"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /moderation/answers/{id}/clarification [put]
func (h *ModerationHandler) ToggleClarification(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	flag, err := strconv.ParseBool(c.DefaultQuery("flag", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid flag parameter",
		})
		return
	}

	h.LogRequest(c, "Moderator toggling clarification flag", "answer_id", id, "flag", flag)

	if err := h.moderationService.ToggleClarification(c.Request.Context(), id, flag, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to toggle clarification flag")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"needs_clarification": flag})
}

// DeleteReview removes any review
// @Summary Moderator delete review
// @Description Delete any review regardless of ownership (instructor, staff or admin)
// @Tags moderation
// @Produce json
// @Param id path int true "Review ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /moderation/reviews/{id} [delete]
func (h *ModerationHandler) DeleteReview(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Moderator deleting review", "review_id", id)

	if err := h.moderationService.DeleteReview(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete review")
		return
	}

	c.Status(http.StatusNoContent)
}

// EditReview rewrites any review
// @Summary Moderator edit review
// @Description Rewrite any review's text regardless of ownership (instructor, staff or admin)
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body services.UpdateReviewRequest true "New content"
// @Success 200 {object} services.ReviewResponse "Updated review"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /moderation/reviews/{id} [put]
func (h *ModerationHandler) EditReview(c *gin.Context) {
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

	h.LogRequest(c, "Moderator editing review", "review_id", id)

	review, err := h.moderationService.EditReview(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to edit review")
		return
	}

	c.JSON(http.StatusOK, review)
}

// ExportUsers downloads the account list as a spreadsheet
// @Summary Export users
// @Description Download all accounts as an xlsx workbook (staff or admin)
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Workbook"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /exports/users [get]
func (h *ModerationHandler) ExportUsers(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting users")

	data, err := h.exportService.ExportUsers(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to export users")
		return
	}

	h.sendWorkbook(c, "users", data)
}

// ExportQuestions downloads all questions as a spreadsheet
// @Summary Export questions
// @Description Download all questions with their resolution state as an xlsx workbook (staff or admin)
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Workbook"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /exports/questions [get]
func (h *ModerationHandler) ExportQuestions(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting questions")

	data, err := h.exportService.ExportQuestions(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to export questions")
		return
	}

	h.sendWorkbook(c, "questions", data)
}

func (h *ModerationHandler) sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
