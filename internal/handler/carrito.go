package handler

import (
	"errors"
	"net/http"

	"gestion/internal/apierror"
	"gestion/internal/dto"
	"gestion/internal/middleware"
	"gestion/internal/service"

	"github.com/gin-gonic/gin"
)

// CarritoHandler exposes the per-terminal cart. The terminal key is derived
// from the JWT (empresa + usuario) — clients never name their own cart.
type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

func (h *CarritoHandler) Ver(c *gin.Context) {
	resp, err := h.svc.Ver(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Agregar godoc
// @Summary Agrega un producto al carrito como línea independiente
// @Tags carrito
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AgregarLineaRequest true "Producto a agregar"
// @Success 200 {object} dto.CarritoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/carrito/lineas [post]
func (h *CarritoHandler) Agregar(c *gin.Context) {
	var req dto.AgregarLineaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Agregar(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) ActualizarCantidad(c *gin.Context) {
	var req dto.ActualizarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarCantidad(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c), c.Param("linea_id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) ActualizarPrecio(c *gin.Context) {
	var req dto.ActualizarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPrecio(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c), c.Param("linea_id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) Quitar(c *gin.Context) {
	resp, err := h.svc.Quitar(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c), c.Param("linea_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) Vaciar(c *gin.Context) {
	if err := h.svc.Vaciar(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout godoc
// @Summary Convierte el carrito en una venta registrada
// @Tags carrito
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.ReciboResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/carrito/checkout [post]
func (h *CarritoHandler) Checkout(c *gin.Context) {
	resp, err := h.svc.Checkout(c.Request.Context(), middleware.EmpresaID(c), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrVentaEnProceso) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}
