package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	service services.ProfileService
}

func NewProfileHandler(service services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetMe returns the authenticated user's profile
// @Summary Get own profile
// @Description Get the caller's identity plus their role-specific profile extension
// @Tags profiles
// @Produce json
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	h.LogRequest(c, "Getting own profile")

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateStudentSchool updates the caller's school placement
// @Summary Update student school placement
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body services.StudentSchoolUpdateRequest true "Fields to update"
// @Success 200 {object} models.ProfileResponse
// @Failure 403 {object} ErrorResponse "Caller is not a student"
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /students/update-school [put]
func (h *ProfileHandler) UpdateStudentSchool(c *gin.Context) {
	h.LogRequest(c, "Updating student school")

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.StudentSchoolUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	profile, err := h.service.UpdateStudentSchool(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateTeacher updates the caller's teacher profile
// @Summary Update teacher profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body services.TeacherUpdateRequest true "Fields to update"
// @Success 200 {object} models.ProfileResponse
// @Failure 403 {object} ErrorResponse "Caller is not a teacher"
// @Router /teachers/me [put]
func (h *ProfileHandler) UpdateTeacher(c *gin.Context) {
	h.LogRequest(c, "Updating teacher profile")

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.TeacherUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	profile, err := h.service.UpdateTeacher(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateAdmin updates the caller's administrator profile
// @Summary Update admin profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body services.AdminUpdateRequest true "Fields to update"
// @Success 200 {object} models.ProfileResponse
// @Failure 403 {object} ErrorResponse "Caller is not an administrator"
// @Router /admins/me [put]
func (h *ProfileHandler) UpdateAdmin(c *gin.Context) {
	h.LogRequest(c, "Updating admin profile")

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req services.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	profile, err := h.service.UpdateAdmin(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) handleServiceError(c *gin.Context, err error) {
	if h.handleCommonErrors(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Profile not found",
		})
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	default:
		h.internalError(c, err)
	}
}
