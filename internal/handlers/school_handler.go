package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
)

type SchoolHandler struct {
	BaseHandler
	service services.SchoolService
}

func NewSchoolHandler(service services.SchoolService, logger utils.Logger) *SchoolHandler {
	return &SchoolHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateSchool registers a new school with its geofence
// @Summary Create a school
// @Tags schools
// @Accept json
// @Produce json
// @Param request body services.SchoolCreateRequest true "School data"
// @Success 201 {object} models.School
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Router /admin/schools [post]
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	h.LogRequest(c, "Creating school")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.SchoolCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	school, err := h.service.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, school)
}

// GetSchool returns a single school
// @Summary Get a school
// @Tags schools
// @Produce json
// @Param id path int true "School ID"
// @Success 200 {object} models.School
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /schools/{id} [get]
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	school, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, school)
}

// ListSchools returns schools with optional region/name filtering
// @Summary List schools
// @Tags schools
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param region query string false "Filter by region"
// @Param q query string false "Search by name"
// @Success 200 {object} services.SchoolListResponse
// @Router /schools [get]
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	page, size := h.ParsePagination(c)

	filters := repositories.SchoolFilters{
		Region: c.Query("region"),
		Query:  c.Query("q"),
		Limit:  size,
		Offset: (page - 1) * size,
	}

	resp, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateSchool updates school attributes
// @Summary Update a school
// @Tags schools
// @Accept json
// @Produce json
// @Param id path int true "School ID"
// @Param request body services.SchoolUpdateRequest true "Fields to update"
// @Success 200 {object} models.School
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /admin/schools/{id} [put]
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	h.LogRequest(c, "Updating school")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SchoolUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	school, err := h.service.Update(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, school)
}

// DeleteSchool removes a school from the registry
// @Summary Delete a school
// @Tags schools
// @Param id path int true "School ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /admin/schools/{id} [delete]
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	h.LogRequest(c, "Deleting school")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SchoolHandler) handleServiceError(c *gin.Context, err error) {
	if h.handleCommonErrors(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	default:
		h.internalError(c, err)
	}
}
