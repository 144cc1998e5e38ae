package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== REGISTRATION ENDPOINTS =====

// RegisterStudent registers a new student account
// @Summary Register a student
// @Description Create a student account with phone number, password and school placement; returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.StudentRegisterRequest true "Registration data"
// @Success 201 {object} models.TokenResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Phone number already registered"
// @Router /auth/register/student [post]
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	h.LogRequest(c, "Registering student")

	var req services.StudentRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	token, err := h.service.RegisterStudent(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// RegisterTeacher registers a new teacher account
// @Summary Register a teacher
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.TeacherRegisterRequest true "Registration data"
// @Success 201 {object} models.TokenResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Phone number already registered"
// @Router /auth/register/teacher [post]
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	h.LogRequest(c, "Registering teacher")

	var req services.TeacherRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	token, err := h.service.RegisterTeacher(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// RegisterAdmin registers a new administrator account
// @Summary Register an administrator
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.AdminRegisterRequest true "Registration data"
// @Success 201 {object} models.TokenResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Phone number already registered"
// @Router /auth/register/admin [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	h.LogRequest(c, "Registering admin")

	var req services.AdminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	token, err := h.service.RegisterAdmin(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// ===== AUTHENTICATION ENDPOINTS =====

// Login authenticates a user by phone, password and role
// @Summary Log in
// @Description Authenticate with phone number, password and role; returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "User login")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// CheckPhone reports whether a phone number is already registered for a role
// @Summary Check phone availability
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.PhoneCheckRequest true "Phone and role"
// @Success 200 {object} models.PhoneCheckResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Router /auth/check-phone [post]
func (h *AuthHandler) CheckPhone(c *gin.Context) {
	h.LogRequest(c, "Checking phone availability")

	var req services.PhoneCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.service.CheckPhone(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) handleServiceError(c *gin.Context, err error) {
	if h.handleCommonErrors(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrDuplicatePhone):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Phone number is already registered for this role",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid phone number or password",
		})
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	default:
		h.internalError(c, err)
	}
}
