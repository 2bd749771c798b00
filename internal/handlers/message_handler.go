package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type MessageHandler struct {
	BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService, logger utils.Logger) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    NewBaseHandler(logger),
		messageService: messageService,
	}
}

// SendMessage sends a private message
// @Summary Send message
// @Description Send a private message, optionally anchored to a question or answer
// @Tags messages
// @Accept json
// @Produce json
// @Param request body services.SendMessageRequest true "Message data"
// @Success 201 {object} services.MessageResponse "Sent message"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Receiver or anchored content not found"
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Sending message", "receiver_id", req.ReceiverID)

	message, err := h.messageService.Send(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, message)
}

// ListMessages lists the caller's messages
// @Summary List messages
// @Description Get the caller's sent and received messages newest first
// @Tags messages
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param unread_only query bool false "Only unread received messages"
// @Success 200 {object} map[string]interface{} "Message list"
// @Router /messages [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	limit, offset := h.ParsePagination(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	filters := repositories.MessageFilters{
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	}

	messages, total, err := h.messageService.GetForUser(c.Request.Context(), userID, filters)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list messages")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
		"total":    total,
	})
}

// GetUnread lists the caller's unread messages
// @Summary List unread messages
// @Tags messages
// @Produce json
// @Success 200 {object} map[string]interface{} "Unread messages"
// @Router /messages/unread [get]
func (h *MessageHandler) GetUnread(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	messages, err := h.messageService.GetUnread(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get unread messages")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
		"total":    len(messages),
	})
}

// MarkRead marks a received message as read
// @Summary Mark message read
// @Description Mark a message read; only the receiver may do this
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} map[string]interface{} "Marked read"
// @Failure 403 {object} ErrorResponse "Not the receiver"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /messages/{id}/read [put]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Marking message read", "message_id", id)

	if err := h.messageService.MarkRead(c.Request.Context(), id, userID); err != nil {
		h.HandleServiceError(c, err, "Failed to mark message read")
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"read": true})
}
