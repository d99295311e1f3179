package handler

import (
	"path/filepath"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportsHandler produces the printable artifacts for the dock office.
type ReportsHandler struct {
	appointmentRepo repository.AppointmentRepository
	storagePath     string
}

func NewReportsHandler(appointmentRepo repository.AppointmentRepository, storagePath string) *ReportsHandler {
	return &ReportsHandler{appointmentRepo: appointmentRepo, storagePath: storagePath}
}

// DockSheet godoc
// @Summary      Daily dock sheet PDF
// @Description  Generates the printable arrival sheet for all appointments of a date
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {file} file
// @Failure      422 {object} apierror.APIError
// @Router       /v1/admin/dock-sheet [get]
func (h *ReportsHandler) DockSheet(c *gin.Context) {
	raw, ok := dateParam(c)
	if !ok {
		return
	}
	date, err := service.ParseDate(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	appointments, err := h.appointmentRepo.ListByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := infra.GenerateDockSheetPDF(date, appointments, h.storagePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
