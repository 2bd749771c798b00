package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/cache"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

// SessionAuthMiddleware authenticates requests against bearer tokens issued
// by the login endpoint and stored in Redis.
type SessionAuthMiddleware struct {
	sessions *cache.CacheHelper
	userRepo repositories.UserRepository
}

// NewSessionAuthMiddleware creates a new session-token authentication middleware
func NewSessionAuthMiddleware(sessions *cache.CacheHelper, userRepo repositories.UserRepository) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		sessions: sessions,
		userRepo: userRepo,
	}
}

// IssueToken mints a new session token for the user. Without a session
// store the token could never resolve, so issuance fails instead of
// handing out a dead credential.
func (sam *SessionAuthMiddleware) IssueToken(ctx context.Context, userID uint) (string, error) {
	if !sam.sessions.Ready() {
		return "", fmt.Errorf("session store unavailable: %w", cache.ErrCacheNotAvailable)
	}

	token := uuid.New().String()
	if err := sam.sessions.SetString(ctx, token, strconv.FormatUint(uint64(userID), 10), cache.SessionCacheConfig.TTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// RevokeToken removes a session token
func (sam *SessionAuthMiddleware) RevokeToken(ctx context.Context, token string) error {
	return sam.sessions.Delete(ctx, token)
}

// AuthMiddleware returns a Gin middleware function for session authentication
func (sam *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header missing",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		userID, err := sam.resolveToken(c.Request.Context(), tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired session token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("session_token", tokenParts[1])

		c.Next()
	}
}

// RequireRoleMiddleware restricts a route to users holding at least one of
// the given roles. Roles are read from storage per request so revocations
// take effect immediately.
func (sam *SessionAuthMiddleware) RequireRoleMiddleware(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			c.Abort()
			return
		}

		userID, ok := value.(uint)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			c.Abort()
			return
		}

		user, err := sam.userRepo.GetByID(c.Request.Context(), nil, userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not found",
			})
			c.Abort()
			return
		}

		if !user.HasAnyRole(roles...) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Insufficient role for this operation",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (sam *SessionAuthMiddleware) resolveToken(ctx context.Context, token string) (uint, error) {
	value, err := sam.sessions.GetString(ctx, token)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed session value: %w", err)
	}
	return uint(userID), nil
}
