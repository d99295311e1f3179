package handler

import (
	"net/http"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/service"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	svc service.ScheduleService
}

func NewScheduleHandler(svc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// UpsertConfig godoc
// @Summary      Set a date-specific slot override
// @Description  Creates or updates the override for (date, time). Date overrides win over weekday defaults.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpsertScheduleConfigRequest true "Override"
// @Success      200 {object} dto.ScheduleConfigResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/admin/schedule-config [post]
func (h *ScheduleHandler) UpsertConfig(c *gin.Context) {
	var req dto.UpsertScheduleConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpsertConfig(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListConfigs godoc
// @Summary      List date-specific overrides
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {array} dto.ScheduleConfigResponse
// @Router       /v1/admin/schedule-config [get]
func (h *ScheduleHandler) ListConfigs(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListConfigs(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteConfig godoc
// @Summary      Remove a date-specific override
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Override id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/admin/schedule-config/{id} [delete]
func (h *ScheduleHandler) DeleteConfig(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteConfig(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertDefault godoc
// @Summary      Set a weekday default
// @Description  Creates or updates the default for (day_of_week, time). A null day_of_week applies to every day; a concrete weekday wins over it.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpsertDefaultScheduleRequest true "Default"
// @Success      200 {object} dto.DefaultScheduleResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/admin/default-schedule [post]
func (h *ScheduleHandler) UpsertDefault(c *gin.Context) {
	var req dto.UpsertDefaultScheduleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpsertDefault(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListDefaults godoc
// @Summary      List weekday defaults
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.DefaultScheduleResponse
// @Router       /v1/admin/default-schedule [get]
func (h *ScheduleHandler) ListDefaults(c *gin.Context) {
	resp, err := h.svc.ListDefaults(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteDefault godoc
// @Summary      Remove a weekday default
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Default id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/admin/default-schedule/{id} [delete]
func (h *ScheduleHandler) DeleteDefault(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteDefault(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableTimes godoc
// @Summary      Resolved slot grid for a date
// @Description  Full per-slot availability as the back office sees it, including the source of each decision
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {array} dto.SlotStatusResponse
// @Router       /v1/admin/available-times [get]
func (h *ScheduleHandler) AvailableTimes(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.AvailableTimes(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AvailableSlots godoc
// @Summary      Bookable slots for a date
// @Description  Supplier view: which times can still be booked and which are taken, without exposing who holds them
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {object} dto.AvailableSlotsResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/supplier/available-slots [get]
func (h *ScheduleHandler) AvailableSlots(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func dateParam(c *gin.Context) (string, bool) {
	var f dto.DateFilter
	if err := c.ShouldBindQuery(&f); err != nil || f.Date == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Query parameter 'date' is required (YYYY-MM-DD)"))
		return "", false
	}
	return f.Date, true
}
