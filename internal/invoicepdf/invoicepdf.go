// Package invoicepdf renders a computed invoice as an A4 PDF.
package invoicepdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/imaging"
	"github.com/welwishers/weldshop/internal/model"
)

// Document is everything printed on an invoice.
type Document struct {
	InvoiceID       int64
	ShopName        string
	CustomerName    string
	CustomerContact string
	Date            time.Time
	Lines           []model.InvoiceLine
	// Summary is printed instead of the table when Lines is empty.
	Summary         string
	Total           decimal.Decimal
	Currency        string
	Logo            *imaging.Logo
}

const (
	margin    = 15.0
	rowHeight = 8.0
	logoWidth = 30.0
)

// column widths in mm; they sum to the printable A4 width.
var columns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 60, "L"},
	{"Brand", 40, "L"},
	{"Qty", 20, "R"},
	{"Unit Price", 30, "R"},
	{"Total", 30, "R"},
}

// Render writes the PDF for doc to w. Long invoices flow onto new pages via
// automatic page breaks and the table header is not repeated.
func Render(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle("Invoice", true)
	pdf.SetCreator(doc.ShopName, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Logo != nil && len(doc.Logo.Data) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(doc.Logo.Data))
		pdf.ImageOptions("logo", margin, margin, logoWidth, logoWidth*doc.Logo.AspectRatio(), false, opts, 0, "")
		pdf.SetY(margin + logoWidth*doc.Logo.AspectRatio() + 4)
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(doc.ShopName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	title := "Invoice"
	if doc.InvoiceID > 0 {
		title = fmt.Sprintf("Invoice #%d", doc.InvoiceID)
	}
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Customer: "+doc.CustomerName), "", 1, "L", false, 0, "")
	if doc.CustomerContact != "" {
		pdf.CellFormat(0, 6, tr("Contact: "+doc.CustomerContact), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Date: "+doc.Date.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(doc.Lines) == 0 && doc.Summary != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, rowHeight, "Items", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(doc.Summary), "", "L", false)
	} else {
		writeTable(pdf, tr, doc)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	var labelWidth float64
	for _, c := range columns[:len(columns)-1] {
		labelWidth += c.width
	}
	pdf.CellFormat(labelWidth, rowHeight, "Total Bill", "", 0, "R", false, 0, "")
	pdf.CellFormat(columns[len(columns)-1].width, rowHeight, tr(money(doc.Currency, doc.Total)), "T", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering invoice pdf: %w", err)
	}
	return nil
}

func writeTable(pdf *gofpdf.Fpdf, tr func(string) string, doc Document) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range doc.Lines {
		cells := []string{
			l.ItemName,
			l.Brand,
			fmt.Sprintf("%d", l.Quantity),
			money(doc.Currency, l.Price),
			money(doc.Currency, l.Total),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, rowHeight, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func money(currency string, d decimal.Decimal) string {
	if currency == "" {
		return d.StringFixed(2)
	}
	return currency + " " + d.StringFixed(2)
}
