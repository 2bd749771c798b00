package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

// ErrorResponse is the common error payload for all endpoints
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler provides common logging helpers for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with request-scoped fields
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	fields := append([]any{"method", c.Request.Method, "path", c.Request.URL.Path}, args...)
	h.logger.Info(msg, fields...)
}

// LogError logs a handler-level failure
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	fields := append([]any{"error", err, "method", c.Request.Method, "path", c.Request.URL.Path}, args...)
	h.logger.Error(msg, fields...)
}

// CurrentUserID returns the authenticated user's id from the Gin context.
// The auth middleware guarantees it is set on all protected routes.
func (h *BaseHandler) CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	return userID, true
}

// ParseIDParam parses a numeric path parameter
func (h *BaseHandler) ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return uint(id), true
}

// ParsePagination parses page/size query parameters into limit/offset
func (h *BaseHandler) ParsePagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}

// HandleServiceError maps service-layer errors onto HTTP status codes
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsPermissionDenied(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Permission denied",
			Details: err.Error(),
		})
	case services.IsInvalidState(err), isConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsInvalidTarget(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.LogError(c, err, fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: fallback,
			Details: err.Error(),
		})
	}
}

func isConflict(err error) bool {
	for _, sentinel := range []error{
		services.ErrUserNameTaken,
		services.ErrLastAdmin,
		services.ErrUserHasContent,
		services.ErrDuplicatePendingRequest,
		services.ErrDuplicateReview,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
