// Package carrito implements the in-progress sale: an ordered list of lines,
// each an independent snapshot of the product at add time. The same product
// may appear as multiple lines; editing the catalog price never retroactively
// changes lines already in the cart.
package carrito

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Linea is one entry of the in-progress sale.
// Invariant: 1 <= Cantidad <= StockDisponible. A line whose quantity drops to
// zero is removed, never kept at zero.
type Linea struct {
	// ID is generated per add-to-cart action, NOT per product
	ID         string    `json:"id"`
	ProductoID uuid.UUID `json:"producto_id"`
	Referencia string    `json:"referencia"`
	Nombre     string    `json:"nombre"`
	// PrecioUnitario starts as the catalog price and may be edited per line
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
	// StockDisponible is the stock ceiling captured at add time
	StockDisponible  int  `json:"stock_disponible"`
	Cantidad         int  `json:"cantidad"`
	PrecioModificado bool `json:"precio_modificado"`
}

func (l Linea) Subtotal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Carrito holds the lines plus the bounded warnings raised by the last
// mutations. Warnings are drained by DrenarAvisos — they surface once.
type Carrito struct {
	Lineas []Linea  `json:"lineas"`
	Avisos []string `json:"avisos,omitempty"`
}

func Nuevo() *Carrito { return &Carrito{} }

// Agregar appends a new line with cantidad 1. The caller captures the product
// snapshot; stock <= 0 is rejected here as a warning no-op.
func (c *Carrito) Agregar(l Linea) bool {
	if l.StockDisponible <= 0 {
		c.avisar(fmt.Sprintf("%s no tiene stock disponible", l.Nombre))
		return false
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Cantidad = 1
	c.Lineas = append(c.Lineas, l)
	return true
}

// ActualizarCantidad sets the quantity of a line. cantidad <= 0 removes the
// line; a value above the captured ceiling clamps to the ceiling and raises
// exactly one warning instead of failing.
func (c *Carrito) ActualizarCantidad(lineaID string, cantidad int) bool {
	idx := c.buscar(lineaID)
	if idx < 0 {
		return false
	}
	if cantidad <= 0 {
		c.Lineas = append(c.Lineas[:idx], c.Lineas[idx+1:]...)
		return true
	}
	l := &c.Lineas[idx]
	if cantidad > l.StockDisponible {
		c.avisar(fmt.Sprintf("Solo hay %d unidades de %s", l.StockDisponible, l.Nombre))
		cantidad = l.StockDisponible
	}
	l.Cantidad = cantidad
	return true
}

// ActualizarPrecio applies an ad-hoc per-line discount or markup.
// Negative values clamp to zero.
func (c *Carrito) ActualizarPrecio(lineaID string, precio decimal.Decimal) bool {
	idx := c.buscar(lineaID)
	if idx < 0 {
		return false
	}
	if precio.IsNegative() {
		precio = decimal.Zero
	}
	l := &c.Lineas[idx]
	l.PrecioUnitario = precio
	l.PrecioModificado = true
	return true
}

func (c *Carrito) Quitar(lineaID string) bool {
	return c.ActualizarCantidad(lineaID, 0)
}

func (c *Carrito) Vaciar() {
	c.Lineas = nil
	c.Avisos = nil
}

func (c *Carrito) Vacio() bool { return len(c.Lineas) == 0 }

func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Utilidad is the projected margin of the in-progress sale.
func (c *Carrito) Utilidad() decimal.Decimal {
	utilidad := decimal.Zero
	for _, l := range c.Lineas {
		margen := l.PrecioUnitario.Sub(l.CostoUnitario).Mul(decimal.NewFromInt(int64(l.Cantidad)))
		utilidad = utilidad.Add(margen)
	}
	return utilidad
}

// DrenarAvisos returns the pending warnings and clears them.
func (c *Carrito) DrenarAvisos() []string {
	avisos := c.Avisos
	c.Avisos = nil
	return avisos
}

func (c *Carrito) avisar(msg string) {
	c.Avisos = append(c.Avisos, msg)
}

func (c *Carrito) buscar(lineaID string) int {
	for i, l := range c.Lineas {
		if l.ID == lineaID {
			return i
		}
	}
	return -1
}
