package handler

import (
	"net/http"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/middleware"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/service"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	svc service.AppointmentService
}

func NewAppointmentHandler(svc service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Create godoc
// @Summary      Book a dock appointment
// @Description  Books a slot for the authenticated supplier. Fails with 409 when the slot is taken or administratively blocked.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateAppointmentRequest true "Appointment data"
// @Success      201 {object} dto.AppointmentResponse
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/supplier/appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListWeek godoc
// @Summary      Week calendar for the supplier
// @Description  All appointments in the 7 days starting at ?week, flagged with ownership. Foreign bookings show only as occupied slots.
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        week query string true "Week start (YYYY-MM-DD)"
// @Success      200 {array} dto.WeekAppointment
// @Router       /v1/supplier/appointments [get]
func (h *AppointmentHandler) ListWeek(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListWeek(c.Request.Context(), middleware.GetPrincipal(c), week)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Reschedule or edit an appointment
// @Description  Partial update. Only appointments still in "scheduled" can change; moving the slot re-runs the availability checks.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                       true "Appointment id"
// @Param        request body dto.UpdateAppointmentRequest true "Fields to change"
// @Success      200 {object} dto.AppointmentResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/supplier/appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateAppointmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Cancel an appointment
// @Description  Only appointments still in "scheduled" can be cancelled
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Appointment id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/supplier/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWeekAdmin godoc
// @Summary      Week calendar for the back office
// @Tags         admin-appointments
// @Produce      json
// @Security     BearerAuth
// @Param        week query string true "Week start (YYYY-MM-DD)"
// @Success      200 {array} dto.AppointmentResponse
// @Router       /v1/admin/appointments [get]
func (h *AppointmentHandler) ListWeekAdmin(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListWeekAdmin(c.Request.Context(), week)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckIn godoc
// @Summary      Register truck arrival
// @Description  Moves the appointment to "checked_in", stamps the arrival time and queues the ERP delivery
// @Tags         admin-appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Appointment id"
// @Success      200 {object} dto.CheckInResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/appointments/{id}/check-in [post]
func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CheckIn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckOut godoc
// @Summary      Register truck departure
// @Description  Moves the appointment from "checked_in" to "checked_out" and stamps the departure time
// @Tags         admin-appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Appointment id"
// @Success      200 {object} dto.AppointmentResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/appointments/{id}/check-out [post]
func (h *AppointmentHandler) CheckOut(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CheckOut(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func weekParam(c *gin.Context) (string, bool) {
	var f dto.WeekFilter
	if err := c.ShouldBindQuery(&f); err != nil || f.Week == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Query parameter 'week' is required (YYYY-MM-DD)"))
		return "", false
	}
	return f.Week, true
}
