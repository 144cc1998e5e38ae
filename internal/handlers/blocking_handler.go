package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

type BlockingHandler struct {
	BaseHandler
	service services.BlockingService
}

func NewBlockingHandler(service services.BlockingService, logger utils.Logger) *BlockingHandler {
	return &BlockingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== DEVICE STATUS =====

// GetStatus evaluates the blocking decision for the calling student
// @Summary Get blocking status
// @Description Evaluate whether app blocking is active for the calling student's device. Coordinates are optional; without them blocking is reported inactive.
// @Tags blocking
// @Produce json
// @Param lat query number false "Device latitude"
// @Param lon query number false "Device longitude"
// @Success 200 {object} models.BlockingDecision
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /blocking/status [get]
func (h *BlockingHandler) GetStatus(c *gin.Context) {
	studentID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var query validator.BlockingStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	// Both coordinates must be present for a usable position
	var loc *services.DeviceLocation
	if query.Latitude != nil && query.Longitude != nil {
		loc = &services.DeviceLocation{
			Latitude:  *query.Latitude,
			Longitude: *query.Longitude,
		}
	}

	decision, err := h.service.EvaluateForStudent(c.Request.Context(), studentID, loc)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}

// ===== RULE MANAGEMENT =====

// CreateRule adds a blocking rule for a school
// @Summary Create a blocking rule
// @Tags blocking
// @Accept json
// @Produce json
// @Param id path int true "School ID"
// @Param request body services.BlockingRuleRequest true "Rule data"
// @Success 201 {object} models.BlockingRule
// @Failure 409 {object} ErrorResponse "Rule already exists"
// @Router /admin/schools/{id}/blocking/rules [post]
func (h *BlockingHandler) CreateRule(c *gin.Context) {
	h.LogRequest(c, "Creating blocking rule")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.BlockingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), schoolID, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// UpdateRule modifies an existing blocking rule
// @Summary Update a blocking rule
// @Tags blocking
// @Accept json
// @Produce json
// @Param rule_id path int true "Rule ID"
// @Param request body services.BlockingRuleRequest true "Rule data"
// @Success 200 {object} models.BlockingRule
// @Failure 404 {object} ErrorResponse "Rule not found"
// @Router /admin/blocking/rules/{rule_id} [put]
func (h *BlockingHandler) UpdateRule(c *gin.Context) {
	h.LogRequest(c, "Updating blocking rule")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	ruleID, ok := h.ParseIDParam(c, "rule_id")
	if !ok {
		return
	}

	var req services.BlockingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), ruleID, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes a blocking rule
// @Summary Delete a blocking rule
// @Tags blocking
// @Param rule_id path int true "Rule ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "Rule not found"
// @Router /admin/blocking/rules/{rule_id} [delete]
func (h *BlockingHandler) DeleteRule(c *gin.Context) {
	h.LogRequest(c, "Deleting blocking rule")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	ruleID, ok := h.ParseIDParam(c, "rule_id")
	if !ok {
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), ruleID, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRules returns all blocking rules for a school
// @Summary List blocking rules
// @Tags blocking
// @Produce json
// @Param id path int true "School ID"
// @Success 200 {array} models.BlockingRule
// @Router /schools/{id}/blocking/rules [get]
func (h *BlockingHandler) ListRules(c *gin.Context) {
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

// ===== EMERGENCY EXCEPTIONS =====

// RequestException files an emergency exception request
// @Summary Request an emergency exception
// @Description Ask for temporary access to a blocked app; limited to 3 requests per 24 hours
// @Tags blocking
// @Accept json
// @Produce json
// @Param request body services.ExceptionCreateRequest true "Exception request"
// @Success 201 {object} services.ExceptionResponse
// @Failure 429 {object} ErrorResponse "Too many requests"
// @Router /blocking/emergency-exceptions [post]
func (h *BlockingHandler) RequestException(c *gin.Context) {
	h.LogRequest(c, "Requesting emergency exception")

	studentID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.ExceptionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.service.RequestException(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListMyExceptions returns the calling student's exception history
// @Summary List own exceptions
// @Tags blocking
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.ExceptionListResponse
// @Router /blocking/emergency-exceptions [get]
func (h *BlockingHandler) ListMyExceptions(c *gin.Context) {
	studentID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	page, size := h.ParsePagination(c)

	resp, err := h.service.ListStudentExceptions(c.Request.Context(), studentID, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPendingExceptions returns exception requests awaiting review
// @Summary List pending exceptions
// @Tags blocking
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.ExceptionListResponse
// @Router /admin/blocking/emergency-exceptions [get]
func (h *BlockingHandler) ListPendingExceptions(c *gin.Context) {
	h.LogRequest(c, "Listing pending exceptions")

	page, size := h.ParsePagination(c)

	resp, err := h.service.ListPendingExceptions(c.Request.Context(), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReviewException approves or rejects a pending exception request
// @Summary Review an exception
// @Tags blocking
// @Accept json
// @Produce json
// @Param exception_id path int true "Exception ID"
// @Param request body services.ExceptionReviewRequest true "Review decision"
// @Success 200 {object} services.ExceptionResponse
// @Failure 409 {object} ErrorResponse "Already reviewed"
// @Router /admin/blocking/emergency-exceptions/{exception_id}/review [post]
func (h *BlockingHandler) ReviewException(c *gin.Context) {
	h.LogRequest(c, "Reviewing emergency exception")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	exceptionID, ok := h.ParseIDParam(c, "exception_id")
	if !ok {
		return
	}

	var req services.ExceptionReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.service.ReviewException(c.Request.Context(), exceptionID, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetExceptionLogs returns the audit trail of an exception
// @Summary Get exception audit logs
// @Tags blocking
// @Produce json
// @Param exception_id path int true "Exception ID"
// @Success 200 {array} models.ExceptionLog
// @Failure 404 {object} ErrorResponse "Exception not found"
// @Router /admin/blocking/emergency-exceptions/{exception_id}/logs [get]
func (h *BlockingHandler) GetExceptionLogs(c *gin.Context) {
	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	exceptionID, ok := h.ParseIDParam(c, "exception_id")
	if !ok {
		return
	}

	logs, err := h.service.GetExceptionLogs(c.Request.Context(), exceptionID, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *BlockingHandler) handleServiceError(c *gin.Context, err error) {
	if h.handleCommonErrors(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	case errors.Is(err, services.ErrRuleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Blocking rule not found",
		})
	case errors.Is(err, services.ErrExceptionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exception not found",
		})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student profile not found",
		})
	case errors.Is(err, services.ErrRuleExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "A rule for this package already exists",
		})
	case errors.Is(err, services.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Exception has already been reviewed",
		})
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Message: "Too many exception requests, try again later",
		})
	default:
		h.internalError(c, err)
	}
}
