package handler

import (
	"net/http"

	"gestion/internal/apierror"
	"gestion/internal/dto"
	"gestion/internal/middleware"
	"gestion/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Resumen godoc
// @Summary Resumen histórico de ventas de la empresa
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResumenVentasResponse
// @Router /v1/reportes/resumen [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context(), middleware.EmpresaID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) VentasDelDia(c *gin.Context) {
	resp, err := h.svc.VentasDelDia(c.Request.Context(), middleware.EmpresaID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) UtilidadDelDia(c *gin.Context) {
	resp, err := h.svc.UtilidadDelDia(c.Request.Context(), middleware.EmpresaID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle aggregates sold products over an inclusive date range.
func (h *ReportesHandler) Detalle(c *gin.Context) {
	var filter dto.DetalleVentaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.DetallePorRango(c.Request.Context(), middleware.EmpresaID(c), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
