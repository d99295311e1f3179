package handler

import (
	"net/http"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SupplierHandler struct {
	svc service.SupplierService
}

func NewSupplierHandler(svc service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// Create godoc
// @Summary      Register a supplier
// @Description  Creates the supplier and its login account, returning the temporary password exactly once
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateSupplierRequest true "Supplier data"
// @Success      201 {object} dto.CreateSupplierResponse
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/admin/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.SupplierResponse
// @Router       /v1/admin/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a supplier
// @Description  Partial update: only fields present in the body change
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                    true "Supplier id"
// @Param        request body dto.UpdateSupplierRequest true "Fields to change"
// @Success      200 {object} dto.SupplierResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/admin/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Deactivate a supplier
// @Description  Soft delete: refused while the supplier still has active appointments; its login accounts are deactivated
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Supplier id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path segment. Writes the 400 response itself on
// failure, like bindAndValidate.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
