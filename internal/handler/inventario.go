package handler

import (
	"net/http"

	"gestion/internal/apierror"
	"gestion/internal/dto"
	"gestion/internal/middleware"
	"gestion/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// RegistrarCompra godoc
// @Summary Registra una compra de stock y recalcula el costo promedio
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarCompraRequest true "Compra"
// @Success 200 {object} dto.RegistrarCompraResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/inventario/compras [post]
func (h *InventarioHandler) RegistrarCompra(c *gin.Context) {
	var req dto.RegistrarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarCompra(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas lists products at or below their low-stock threshold.
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context(), middleware.EmpresaID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Movimientos(c.Request.Context(), middleware.EmpresaID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
