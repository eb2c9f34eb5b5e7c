package carrito

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linea(nombre string, precio, costo float64, stock int) Linea {
	return Linea{
		Referencia:      "REF-" + nombre,
		Nombre:          nombre,
		PrecioUnitario:  decimal.NewFromFloat(precio),
		CostoUnitario:   decimal.NewFromFloat(costo),
		StockDisponible: stock,
	}
}

func TestAgregar_NuevaLineaConCantidadUno(t *testing.T) {
	c := Nuevo()

	ok := c.Agregar(linea("Arroz 500g", 3500, 2800, 10))

	require.True(t, ok)
	require.Len(t, c.Lineas, 1)
	assert.Equal(t, 1, c.Lineas[0].Cantidad)
	assert.NotEmpty(t, c.Lineas[0].ID)
	assert.Empty(t, c.DrenarAvisos())
}

func TestAgregar_SinStockEsRechazadoConAviso(t *testing.T) {
	c := Nuevo()

	ok := c.Agregar(linea("Panela", 4000, 3000, 0))

	assert.False(t, ok)
	assert.Empty(t, c.Lineas)
	avisos := c.DrenarAvisos()
	require.Len(t, avisos, 1)
	assert.Contains(t, avisos[0], "Panela")
}

func TestAgregar_MismoProductoGeneraLineasIndependientes(t *testing.T) {
	c := Nuevo()

	require.True(t, c.Agregar(linea("Café 250g", 9500, 7000, 5)))
	require.True(t, c.Agregar(linea("Café 250g", 9500, 7000, 5)))

	require.Len(t, c.Lineas, 2)
	assert.NotEqual(t, c.Lineas[0].ID, c.Lineas[1].ID)

	// Editing one line never touches the other
	require.True(t, c.ActualizarPrecio(c.Lineas[0].ID, decimal.NewFromInt(8000)))
	assert.True(t, c.Lineas[0].PrecioModificado)
	assert.False(t, c.Lineas[1].PrecioModificado)
	assert.True(t, c.Lineas[1].PrecioUnitario.Equal(decimal.NewFromInt(9500)))
}

func TestActualizarCantidad_ClampAlTechoConUnSoloAviso(t *testing.T) {
	c := Nuevo()
	require.True(t, c.Agregar(linea("Aceite 1L", 12000, 9500, 4)))
	id := c.Lineas[0].ID

	require.True(t, c.ActualizarCantidad(id, 9))

	assert.Equal(t, 4, c.Lineas[0].Cantidad)
	avisos := c.DrenarAvisos()
	require.Len(t, avisos, 1)
	assert.Contains(t, avisos[0], "Solo hay 4 unidades")

	// Warnings drain once — a second read comes back empty
	assert.Empty(t, c.DrenarAvisos())
}

func TestActualizarCantidad_CeroEliminaLaLinea(t *testing.T) {
	c := Nuevo()
	require.True(t, c.Agregar(linea("Sal", 1500, 900, 8)))
	id := c.Lineas[0].ID

	require.True(t, c.ActualizarCantidad(id, 0))
	assert.True(t, c.Vacio())

	require.True(t, c.Agregar(linea("Sal", 1500, 900, 8)))
	require.True(t, c.ActualizarCantidad(c.Lineas[0].ID, -3))
	assert.True(t, c.Vacio())
}

func TestActualizarCantidad_LineaInexistente(t *testing.T) {
	c := Nuevo()
	assert.False(t, c.ActualizarCantidad("no-existe", 2))
}

func TestActualizarPrecio_NegativoSeClampeaACero(t *testing.T) {
	c := Nuevo()
	require.True(t, c.Agregar(linea("Galletas", 2500, 1800, 10)))
	id := c.Lineas[0].ID

	require.True(t, c.ActualizarPrecio(id, decimal.NewFromInt(-100)))

	assert.True(t, c.Lineas[0].PrecioUnitario.IsZero())
	assert.True(t, c.Lineas[0].PrecioModificado)
}

func TestTotalYUtilidad(t *testing.T) {
	c := Nuevo()
	require.True(t, c.Agregar(linea("Arroz 500g", 3500, 2800, 10)))
	require.True(t, c.Agregar(linea("Aceite 1L", 12000, 9500, 4)))
	require.True(t, c.ActualizarCantidad(c.Lineas[0].ID, 3)) // 3 x 3500

	// total = 3*3500 + 1*12000 = 22500
	assert.True(t, c.Total().Equal(decimal.NewFromInt(22500)), "total = %s", c.Total())
	// utilidad = 3*(3500-2800) + 1*(12000-9500) = 2100 + 2500 = 4600
	assert.True(t, c.Utilidad().Equal(decimal.NewFromInt(4600)), "utilidad = %s", c.Utilidad())
}

func TestVaciar(t *testing.T) {
	c := Nuevo()
	require.True(t, c.Agregar(linea("Arroz 500g", 3500, 2800, 10)))
	c.Agregar(linea("Sin stock", 1000, 500, 0))

	c.Vaciar()

	assert.True(t, c.Vacio())
	assert.Empty(t, c.DrenarAvisos())
	assert.True(t, c.Total().IsZero())
}

func TestQuitar(t *testing.T) {
	c := Nuevo()
	require.True(t, c.Agregar(linea("Arroz 500g", 3500, 2800, 10)))
	require.True(t, c.Agregar(linea("Aceite 1L", 12000, 9500, 4)))

	require.True(t, c.Quitar(c.Lineas[0].ID))

	require.Len(t, c.Lineas, 1)
	assert.Equal(t, "Aceite 1L", c.Lineas[0].Nombre)
	assert.False(t, c.Quitar("no-existe"))
}
