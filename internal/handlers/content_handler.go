package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type ContentHandler struct {
	BaseHandler
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		contentService: contentService,
	}
}

// CreateQuestion posts a new question
// @Summary Create question
// @Description Post a new question
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} services.QuestionResponse "Created question"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Router /questions [post]
func (h *ContentHandler) CreateQuestion(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating question", "author_id", userID)

	question, err := h.contentService.CreateQuestion(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to create question")
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Description Get a single question with edit/delete capability flags for the caller
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} services.QuestionResponse "Question"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id} [get]
func (h *ContentHandler) GetQuestion(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	question, err := h.contentService.GetQuestion(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get question")
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists questions with optional filtering
// @Summary List questions
// @Description Get a paginated list of questions
// @Tags questions
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param author_id query int false "Filter by author"
// @Param resolved query bool false "Filter by resolution state"
// @Param sort_by query string false "Sort field (created_at, title)"
// @Param sort_order query string false "Sort direction (asc, desc)"
// @Success 200 {object} services.QuestionListResponse "Question list"
// @Router /questions [get]
func (h *ContentHandler) ListQuestions(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	filters := h.parseQuestionFilters(c)

	response, err := h.contentService.ListQuestions(c.Request.Context(), filters, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list questions")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchQuestions searches questions by keyword
// @Summary Search questions
// @Description Search question titles and bodies for a term
// @Tags questions
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.QuestionListResponse "Search results"
// @Failure 400 {object} ErrorResponse "Missing search term"
// @Router /questions/search [get]
func (h *ContentHandler) SearchQuestions(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	h.LogRequest(c, "Searching questions", "term", term)

	filters := h.parseQuestionFilters(c)

	response, err := h.contentService.SearchQuestions(c.Request.Context(), term, filters, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to search questions")
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateQuestion edits a question
// @Summary Update question
// @Description Edit a question's title or body (author or moderator)
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body services.UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} services.QuestionResponse "Updated question"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id} [put]
func (h *ContentHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	question, err := h.contentService.UpdateQuestion(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to update question")
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question and its answers and reviews
// @Summary Delete question
// @Description Delete a question along with its answers and their reviews (author or moderator)
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id} [delete]
func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.contentService.DeleteQuestion(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete question")
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateAnswer posts an answer to a question
// @Summary Create answer
// @Description Post an answer to a question
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body services.CreateAnswerRequest true "Answer data"
// @Success 201 {object} services.AnswerResponse "Created answer"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /questions/{id}/answers [post]
func (h *ContentHandler) CreateAnswer(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	questionID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating answer", "question_id", questionID)

	answer, err := h.contentService.CreateAnswer(c.Request.Context(), questionID, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to create answer")
		return
	}

	c.JSON(http.StatusCreated, answer)
}

// GetAnswers lists a question's answers
// @Summary List answers
// @Description Get all answers for a question in posting order, with the accepted answer flagged
// @Tags answers
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]interface{} "Answer list"
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /questions/{id}/answers [get]
func (h *ContentHandler) GetAnswers(c *gin.Context) {
	questionID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	answers, err := h.contentService.GetAnswers(c.Request.Context(), questionID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get answers")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"answers": answers,
		"total":   len(answers),
	})
}

// UpdateAnswer edits an answer
// @Summary Update answer
// @Description Edit an answer's body (author or moderator)
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param request body services.UpdateAnswerRequest true "Fields to update"
// @Success 200 {object} services.AnswerResponse "Updated answer"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /answers/{id} [put]
func (h *ContentHandler) UpdateAnswer(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating answer", "answer_id", id)

	answer, err := h.contentService.UpdateAnswer(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to update answer")
		return
	}

	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer removes an answer
// @Summary Delete answer
// @Description Delete an answer; a question resolved by it becomes unresolved (author or moderator)
// @Tags answers
// @Produce json
// @Param id path int true "Answer ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /answers/{id} [delete]
func (h *ContentHandler) DeleteAnswer(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting answer", "answer_id", id)

	if err := h.contentService.DeleteAnswer(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to delete answer")
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkResolved accepts an answer for a question
// @Summary Resolve question
// @Description Mark a question resolved by accepting one of its answers (author only)
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Param answer_id path int true "Answer ID"
// @Success 200 {object} map[string]interface{} "Resolved"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 422 {object} ErrorResponse "Answer belongs to another question"
// @Router /questions/{id}/resolve/{answer_id} [post]
func (h *ContentHandler) MarkResolved(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	questionID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	answerID, ok := h.ParseIDParam(c, "answer_id")
	if !ok {
		return
	}

	h.LogRequest(c, "Resolving question", "question_id", questionID, "answer_id", answerID)

	if err := h.contentService.MarkResolved(c.Request.Context(), questionID, answerID, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to resolve question")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"resolved": true})
}

// MarkResolvedWithoutAnswer closes a question without a satisfactory answer
// @Summary Resolve question without answer
// @Description Close a question that has no acceptable answer; pass confirm=true to accept the first answer when answers exist
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Param confirm query bool false "Accept the first answer when the question has answers"
// @Success 200 {object} map[string]interface{} "Resolved"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 409 {object} ErrorResponse "Question has answers and confirm was not set"
// @Router /questions/{id}/resolve [post]
func (h *ContentHandler) MarkResolvedWithoutAnswer(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	questionID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	confirm, _ := strconv.ParseBool(c.DefaultQuery("confirm", "false"))

	h.LogRequest(c, "Resolving question without answer", "question_id", questionID, "confirm", confirm)

	if err := h.contentService.MarkResolvedWithoutAnswer(c.Request.Context(), questionID, confirm, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to resolve question")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"resolved": true})
}

// UnmarkResolved reopens a question
// @Summary Reopen question
// @Description Clear a question's resolution and accepted answer (author only)
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]interface{} "Reopened"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id}/resolve [delete]
func (h *ContentHandler) UnmarkResolved(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	questionID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Reopening question", "question_id", questionID)

	if err := h.contentService.UnmarkResolved(c.Request.Context(), questionID, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to reopen question")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"resolved": false})
}

// SetClarification flags an answer as needing clarification
// @Summary Flag answer for clarification
// @Description Set or clear the needs-clarification flag on an answer (question author or moderator)
// @Tags answers
// @Produce json
// @Param id path int true "Answer ID"
// @Param flag query bool false "Flag value (default: true)"
// @Success 200 {object} map[string]interface{} "Flag state"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /answers/{id}/clarification [put]
func (h *ContentHandler) SetClarification(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	answerID, ok := h.ParseIDParam(c, "id")
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

	h.LogRequest(c, "Setting clarification flag", "answer_id", answerID, "flag", flag)

	if err := h.contentService.SetClarification(c.Request.Context(), answerID, flag, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to set clarification flag")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"needs_clarification": flag})
}

func (h *ContentHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	limit, offset := h.ParsePagination(c)

	filters := repositories.QuestionFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if authorStr := c.Query("author_id"); authorStr != "" {
		if authorID, err := strconv.ParseUint(authorStr, 10, 32); err == nil {
			id := uint(authorID)
			filters.AuthorID = &id
		}
	}
	if resolvedStr := c.Query("resolved"); resolvedStr != "" {
		if resolved, err := strconv.ParseBool(resolvedStr); err == nil {
			filters.Resolved = &resolved
		}
	}

	return filters
}
