package pdf

import (
	"bytes"
	"context"

	"github.com/flexprice/invoicegen/internal/domain/pdf"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/jung-kurt/gofpdf"
)

// Generator defines the interface for PDF generation operations
type Generator interface {
	RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error)
}

type service struct {
	logger *logger.Logger
}

// NewGenerator creates a new PDF service. Output depends only on the input
// data: the document dates come from the invoice, never from the clock, so
// rendering the same invoice twice yields identical bytes.
func NewGenerator(logger *logger.Logger) Generator {
	return &service{logger: logger}
}

const (
	pageMargin = 15.0
	pageWidth  = 210.0
	bodyWidth  = pageWidth - 2*pageMargin
	logoName   = "company-logo"
	dateLayout = "02 Jan 2006"
)

func (s *service) RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("document rendering was cancelled").
			Mark(ierr.ErrArtifact)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(data.IssuingDate)
	doc.SetModificationDate(data.IssuingDate)
	doc.SetCatalogSort(true)
	doc.SetTitle("Invoice "+data.InvoiceNumber, true)
	doc.SetCreator(data.Biller.Name, true)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	s.drawHeader(doc, data, tr)
	s.drawParties(doc, data, tr)
	s.drawLineItems(doc, data, tr)
	s.drawSummary(doc, data, tr)
	s.drawFooter(doc, data, tr)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to render invoice document").
			WithReportableDetails(map[string]any{
				"invoiceNumber": data.InvoiceNumber,
			}).
			Mark(ierr.ErrArtifact)
	}
	return buf.Bytes(), nil
}

// logoUsable decodes the logo in a scratch document. gofpdf latches the first
// error on the document, so a broken image must never touch the real one.
func logoUsable(data *pdf.InvoiceData) bool {
	if len(data.Logo) == 0 || data.LogoType == "" {
		return false
	}
	probe := gofpdf.New("P", "mm", "A4", "")
	probe.RegisterImageOptionsReader(logoName, gofpdf.ImageOptions{ImageType: data.LogoType}, bytes.NewReader(data.Logo))
	return probe.Ok()
}

func (s *service) drawHeader(doc *gofpdf.Fpdf, data *pdf.InvoiceData, tr func(string) string) {
	top := doc.GetY()

	if logoUsable(data) {
		opts := gofpdf.ImageOptions{ImageType: data.LogoType}
		doc.RegisterImageOptionsReader(logoName, opts, bytes.NewReader(data.Logo))
		doc.ImageOptions(logoName, pageMargin, top, 35, 0, false, opts, 0, "")
	} else if len(data.Logo) > 0 {
		s.logger.Warnw("skipping unreadable logo", "invoice_number", data.InvoiceNumber)
	}

	doc.SetFont("Helvetica", "B", 24)
	doc.SetXY(pageMargin, top)
	doc.CellFormat(bodyWidth, 12, "INVOICE", "", 2, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(bodyWidth, 6, tr("#"+data.InvoiceNumber), "", 2, "R", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(bodyWidth, 5, tr(data.Biller.Name), "", 2, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(bodyWidth, 5, tr(data.Biller.Address), "", 2, "R", false, 0, "")
	if data.Biller.TaxID != "" {
		doc.CellFormat(bodyWidth, 5, tr("Tax ID: "+data.Biller.TaxID), "", 2, "R", false, 0, "")
	}
	doc.Ln(10)
}

func (s *service) drawParties(doc *gofpdf.Fpdf, data *pdf.InvoiceData, tr func(string) string) {
	top := doc.GetY()
	half := bodyWidth / 2

	doc.SetFont("Helvetica", "U", 10)
	doc.CellFormat(half, 5, "Bill To:", "", 2, "L", false, 0, "")
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(half, 5, tr(data.Recipient.Name), "", 2, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	address := data.Recipient.Address
	if address == "" {
		address = "Address not provided"
	}
	doc.MultiCell(half, 5, tr(address), "", "L", false)

	due := "Immediate"
	if data.DueDate != nil {
		due = data.DueDate.Format(dateLayout)
	}

	doc.SetXY(pageMargin+half, top)
	doc.CellFormat(half, 5, "Date:", "", 2, "R", false, 0, "")
	doc.CellFormat(half, 5, data.IssuingDate.Format(dateLayout), "", 2, "R", false, 0, "")
	doc.CellFormat(half, 5, "Due Date:", "", 2, "R", false, 0, "")
	doc.CellFormat(half, 5, due, "", 2, "R", false, 0, "")

	doc.SetX(pageMargin)
	doc.Ln(15)
}

var lineItemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Description", bodyWidth - 105, "L"},
	{"Base Amount", 40, "R"},
	{"GST %", 25, "R"},
	{"Total", 40, "R"},
}

func (s *service) drawLineItems(doc *gofpdf.Fpdf, data *pdf.InvoiceData, tr func(string) string) {
	doc.SetFillColor(238, 238, 238)
	doc.SetFont("Helvetica", "B", 10)
	for _, col := range lineItemColumns {
		doc.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, item := range data.LineItems {
		values := []string{item.Description, item.Amount, item.TaxPercentage + "%", item.Total}
		for i, col := range lineItemColumns {
			doc.CellFormat(col.width, 8, tr(values[i]), "1", 0, col.align, false, 0, "")
		}
		doc.Ln(-1)
	}
	doc.Ln(6)
}

func (s *service) drawSummary(doc *gofpdf.Fpdf, data *pdf.InvoiceData, tr func(string) string) {
	labelX := pageMargin + bodyWidth - 90
	rows := []struct{ label, value string }{
		{"Subtotal:", data.Subtotal},
		{"GST (" + data.TaxPercentage + "%):", data.TaxAmount},
	}

	doc.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		doc.SetX(labelX)
		doc.CellFormat(50, 6, tr(row.label), "", 0, "R", false, 0, "")
		doc.CellFormat(40, 6, tr(row.value), "", 1, "R", false, 0, "")
	}

	doc.Line(labelX, doc.GetY()+1, pageMargin+bodyWidth, doc.GetY()+1)
	doc.Ln(3)

	doc.SetFont("Helvetica", "B", 12)
	doc.SetX(labelX)
	doc.CellFormat(50, 8, "Grand Total:", "", 0, "R", false, 0, "")
	doc.CellFormat(40, 8, tr(data.Total), "", 1, "R", false, 0, "")
	doc.Ln(12)
}

func (s *service) drawFooter(doc *gofpdf.Fpdf, data *pdf.InvoiceData, tr func(string) string) {
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(60, 6, "Payment Method:", "LTR", 2, "L", false, 0, "")
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(60, 6, tr(data.PaymentMethod), "LBR", 1, "L", false, 0, "")
	doc.Ln(15)

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(bodyWidth, 6, "Thank you for your business!", "", 1, "C", false, 0, "")
}
