package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
)

type ScheduleHandler struct {
	BaseHandler
	service services.ScheduleService
}

func NewScheduleHandler(service services.ScheduleService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ReplaceWindows replaces a school's weekly schedule windows
// @Summary Replace schedule windows
// @Description Atomically replace all weekly school-hour windows for a school
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path int true "School ID"
// @Param request body []services.ScheduleWindowRequest true "Weekly windows"
// @Success 200 {array} models.ScheduleWindow
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /admin/schools/{id}/schedule/windows [put]
func (h *ScheduleHandler) ReplaceWindows(c *gin.Context) {
	h.LogRequest(c, "Replacing schedule windows")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var reqs []services.ScheduleWindowRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	windows, err := h.service.ReplaceWindows(c.Request.Context(), schoolID, reqs, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, windows)
}

// AddClosure records a holiday or special event for a school
// @Summary Add a closure
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path int true "School ID"
// @Param request body services.ScheduleClosureRequest true "Closure data"
// @Success 201 {object} models.ScheduleClosure
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /admin/schools/{id}/schedule/closures [post]
func (h *ScheduleHandler) AddClosure(c *gin.Context) {
	h.LogRequest(c, "Adding schedule closure")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ScheduleClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	closure, err := h.service.AddClosure(c.Request.Context(), schoolID, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, closure)
}

// RemoveClosure deletes a closure
// @Summary Remove a closure
// @Tags schedules
// @Param id path int true "School ID"
// @Param closure_id path int true "Closure ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "Closure not found"
// @Router /admin/schools/{id}/schedule/closures/{closure_id} [delete]
func (h *ScheduleHandler) RemoveClosure(c *gin.Context) {
	h.LogRequest(c, "Removing schedule closure")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	closureID, ok := h.ParseIDParam(c, "closure_id")
	if !ok {
		return
	}

	if err := h.service.RemoveClosure(c.Request.Context(), schoolID, closureID, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMonthSchedule returns a school's month view
// @Summary Get a school's month schedule
// @Tags schedules
// @Produce json
// @Param id path int true "School ID"
// @Param year query int false "Year (default: current)"
// @Param month query int false "Month 1-12 (default: current)"
// @Success 200 {object} models.MonthSchedule
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /schools/{id}/schedule [get]
func (h *ScheduleHandler) GetMonthSchedule(c *gin.Context) {
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	year, month, ok := h.parseYearMonth(c)
	if !ok {
		return
	}

	schedule, err := h.service.GetMonthSchedule(c.Request.Context(), schoolID, year, month)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// GetMySchedule returns the month view for the calling student's school
// @Summary Get own school schedule
// @Description Month view of school-hour windows, holidays and special events for the caller's school
// @Tags schedules
// @Produce json
// @Param year query int false "Year (default: current)"
// @Param month query int false "Month 1-12 (default: current)"
// @Success 200 {object} models.MonthSchedule
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /blocking/school-schedule [get]
func (h *ScheduleHandler) GetMySchedule(c *gin.Context) {
	studentID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	year, month, ok := h.parseYearMonth(c)
	if !ok {
		return
	}

	schedule, err := h.service.GetMonthScheduleForStudent(c.Request.Context(), studentID, year, month)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) parseYearMonth(c *gin.Context) (int, time.Month, bool) {
	now := time.Now()

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid year parameter"})
		return 0, 0, false
	}

	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid month parameter"})
		return 0, 0, false
	}

	return year, time.Month(month), true
}

func (h *ScheduleHandler) handleServiceError(c *gin.Context, err error) {
	if h.handleCommonErrors(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	case errors.Is(err, services.ErrClosureNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Closure not found",
		})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student profile not found",
		})
	default:
		h.internalError(c, err)
	}
}
