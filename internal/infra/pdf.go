package infra

// pdf.go — ticket PDF generation with go-pdf/fpdf. The page is shaped like the
// empresa's thermal paper: width, margins and font size come from its printing
// preferences. The output file lands in storagePath/ticket_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"gestion/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateTicketPDF renders a receipt for a completed Venta using the
// empresa's printing preferences. Returns the absolute path of the file.
func GenerateTicketPDF(venta *model.Venta, empresa *model.Empresa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("ticket_%d.pdf", venta.NumeroTicket)
	filePath := filepath.Join(storagePath, fileName)

	anchoMM := float64(empresa.PapelAnchoMM)
	margenMM := float64(empresa.MargenMM)
	fuente := float64(empresa.FuenteTamano)

	// Height grows with the item count so the ticket never paginates
	altoMM := 70 + float64(len(venta.Items))*5

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: anchoMM, Ht: altoMM},
	})
	pdf.SetMargins(margenMM, margenMM, margenMM)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*margenMM

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", fuente+4)
	pdf.CellFormat(contentW, 7, empresa.Nombre, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", fuente-1)
	pdf.CellFormat(contentW, 5, "Comprobante de venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Ticket info ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", fuente-1)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Ticket N° %d", venta.NumeroTicket), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", fuente-2)
	pdf.CellFormat(contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(margenMM, pdf.GetY(), pageW-margenMM, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", fuente-2)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", fuente-2)
	for _, item := range venta.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		nombre = recortarNombre(nombre, 22)
		subtotal := item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, FormatCOP(subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(margenMM, pdf.GetY(), pageW-margenMM, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", fuente+1)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, FormatCOP(venta.Total), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", fuente-2)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// recortarNombre limita el nombre a max caracteres. Corta por runas, no por
// bytes: los nombres con tildes o eñes no deben partirse a mitad de carácter.
func recortarNombre(nombre string, max int) string {
	r := []rune(nombre)
	if len(r) <= max {
		return nombre
	}
	return string(r[:max-1]) + "…"
}
