package handler

import (
	"net/http"

	"gestion/internal/apierror"
	"gestion/internal/dto"
	"gestion/internal/middleware"
	"gestion/internal/service"

	"github.com/gin-gonic/gin"
)

type EmpresaHandler struct{ svc service.EmpresaService }

func NewEmpresaHandler(svc service.EmpresaService) *EmpresaHandler {
	return &EmpresaHandler{svc: svc}
}

func (h *EmpresaHandler) Preferencias(c *gin.Context) {
	resp, err := h.svc.Preferencias(c.Request.Context(), middleware.EmpresaID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarPreferencias applies a partial update of the receipt settings.
func (h *EmpresaHandler) ActualizarPreferencias(c *gin.Context) {
	var req dto.PreferenciasImpresionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPreferencias(c.Request.Context(), middleware.EmpresaID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
