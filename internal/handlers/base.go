package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

// ErrorResponse is the standard error envelope for all endpoints
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler provides common functionality shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger
func (b BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.FromContext(c, b.logger).Debug(msg,
		"method", c.Request.Method,
		"path", c.Request.URL.Path)
}

// CurrentUserID returns the authenticated user's ID set by the auth middleware.
// Writes a 401 response and returns false when the context has no user.
func (b BaseHandler) CurrentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	return userID.(uint), true
}

// ParseIDParam parses a numeric path parameter, responding 400 on failure.
func (b BaseHandler) ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return uint(id), true
}

// ParsePagination reads page/size query parameters with sane defaults.
func (b BaseHandler) ParsePagination(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// handleCommonErrors dispatches the error types shared by every service.
// Returns true when the error was handled.
func (b BaseHandler) handleCommonErrors(c *gin.Context, err error) bool {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return true
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule": businessRuleError.Rule,
			},
		})
		return true
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return true
	}

	if errors.Is(err, services.ErrForbidden) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
		return true
	}

	return false
}

// internalError logs the error and responds 500 without leaking internals
func (b BaseHandler) internalError(c *gin.Context, err error) {
	utils.FromContext(c, b.logger).Error("Internal server error",
		"error", err,
		"path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: "Internal server error",
	})
}

// RequireRole checks the role set by the auth middleware against the allowed
// list, responding 403 on mismatch.
func RequireRole(c *gin.Context, roles ...models.UserRole) bool {
	roleValue, exists := c.Get("user_role")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return false
	}
	role := roleValue.(models.UserRole)
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	c.JSON(http.StatusForbidden, ErrorResponse{
		Message: "Insufficient permissions",
	})
	return false
}
