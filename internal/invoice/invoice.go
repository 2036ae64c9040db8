package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// Renderer produces an order invoice document entirely in memory.
type Renderer interface {
	Render(order *models.Order) ([]byte, error)
}

const itemsPerPage = 25

// PDFRenderer renders invoices as A4 PDFs.
type PDFRenderer struct {
	storeName string
}

// NewPDFRenderer creates a renderer branded with the store name.
func NewPDFRenderer(storeName string) *PDFRenderer {
	return &PDFRenderer{storeName: storeName}
}

// Render lays out the invoice: header, a line-item table paginated every
// itemsPerPage rows, grand total and footer. Returns the finished PDF bytes.
func (r *PDFRenderer) Render(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	writeHeader := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(0, 10, r.storeName, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Invoice for order %s", order.ID), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, "Qty", "B", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, "Unit Price", "B", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, "Line Total", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}

	writeHeader()
	for i, item := range order.Items {
		if i > 0 && i%itemsPerPage == 0 {
			writeHeader()
		}
		pdf.CellFormat(90, 7, item.ProductName, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatMoney(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, formatMoney(item.LineTotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 8, "Grand Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, formatMoney(order.Total), "T", 1, "R", false, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for shopping with us.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatMoney(m models.Money) string {
	return fmt.Sprintf("%.2f %s", m.ToFloat(), m.Currency)
}
