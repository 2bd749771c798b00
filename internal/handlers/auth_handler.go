package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	userService services.UserService
	auth        *SessionAuthMiddleware
}

func NewAuthHandler(userService services.UserService, auth *SessionAuthMiddleware, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		auth:        auth,
	}
}

// Register creates a new account
// @Summary Register a new account
// @Description Create an account with a user name and password, optionally redeeming an invitation code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration data"
// @Success 201 {object} services.UserResponse "Created account"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Invitation code not found or already used"
// @Failure 409 {object} ErrorResponse "User name already taken"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Registering user", "user_name", req.UserName)

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and issues a session token
// @Summary Log in
// @Description Authenticate with user name and password and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Token and account"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "User logging in", "user_name", req.UserName)

	user, err := h.userService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to authenticate")
		return
	}

	token, err := h.auth.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		h.LogError(c, err, "Failed to issue session token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to create session",
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the current session token
// @Summary Log out
// @Description Revoke the bearer token used on this request
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Logged out"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, exists := c.Get("session_token")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.auth.RevokeToken(c.Request.Context(), token.(string)); err != nil {
		h.LogError(c, err, "Failed to revoke session token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to log out",
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{"message": "logged out"})
}

// ResetPassword redeems a one-time code and sets a new password
// @Summary Reset password
// @Description Log in with a one-time code issued by an admin and set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.PasswordResetRequest true "Reset data"
// @Success 200 {object} services.UserResponse "Updated account"
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse "Invalid or consumed one-time code"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Resetting password", "user_name", req.UserName)

	user, err := h.userService.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to reset password")
		return
	}

	c.JSON(http.StatusOK, user)
}
