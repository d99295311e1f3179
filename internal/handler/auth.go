package handler

import (
	"net/http"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/middleware"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary      Authenticate a user
// @Description  Exchanges email and password for a signed JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200 {object} dto.LoginResponse
// @Failure      403 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Verify godoc
// @Summary      Verify the current token
// @Description  Confirms the bearer token is valid and its account still active
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.VerifyResponse
// @Failure      401 {object} apierror.APIError
// @Failure      403 {object} apierror.APIError
// @Router       /v1/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	resp, err := h.svc.Verify(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
