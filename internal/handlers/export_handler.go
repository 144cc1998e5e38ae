package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	service services.ExportService
}

func NewExportHandler(service services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ExportSchoolStudents streams the xlsx roster of a school's students
// @Summary Export school students
// @Description Download an xlsx file listing every student of a school with their blocking state
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "School ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse "School not found"
// @Router /admin/schools/{id}/students/export [get]
func (h *ExportHandler) ExportSchoolStudents(c *gin.Context) {
	h.LogRequest(c, "Exporting school students")

	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	schoolID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	content, filename, err := h.service.ExportSchoolStudents(c.Request.Context(), schoolID, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, content)
}

func (h *ExportHandler) handleServiceError(c *gin.Context, err error) {
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
