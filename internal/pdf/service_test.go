package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/pdf"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() *pdf.InvoiceData {
	due := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	return &pdf.InvoiceData{
		ID:            "inv_01",
		InvoiceNumber: "INV-001",
		IssuingDate:   time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		DueDate:       &due,
		PaymentMethod: "UPI",
		Biller:        pdf.BillerInfo{Name: "My Company Name", Address: "123 Business St, Tech City"},
		Recipient:     pdf.RecipientInfo{Name: "Acme Corp", Address: "1 Road, Pune"},
		LineItems: []pdf.LineItemData{
			{Description: "Consulting", Amount: "5000.00", TaxPercentage: "18", Total: "5900.00"},
		},
		Subtotal:      "5000.00",
		TaxPercentage: "18",
		TaxAmount:     "900.00",
		Total:         "5900.00",
	}
}

func tinyPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRenderInvoicePdf(t *testing.T) {
	gen := NewGenerator(logger.NewNopLogger())

	out, err := gen.RenderInvoicePdf(context.Background(), sampleData())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderInvoicePdf_Deterministic(t *testing.T) {
	gen := NewGenerator(logger.NewNopLogger())
	data := sampleData()
	data.Logo = tinyPNG(t)
	data.LogoType = "PNG"

	first, err := gen.RenderInvoicePdf(context.Background(), data)
	require.NoError(t, err)
	second, err := gen.RenderInvoicePdf(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderInvoicePdf_ImmediateDueDate(t *testing.T) {
	gen := NewGenerator(logger.NewNopLogger())
	data := sampleData()
	data.DueDate = nil
	data.Recipient.Address = ""

	out, err := gen.RenderInvoicePdf(context.Background(), data)

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderInvoicePdf_BrokenLogoIsSkipped(t *testing.T) {
	gen := NewGenerator(logger.NewNopLogger())
	data := sampleData()
	data.Logo = []byte("definitely not a png")
	data.LogoType = "PNG"

	out, err := gen.RenderInvoicePdf(context.Background(), data)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderInvoicePdf_Cancelled(t *testing.T) {
	gen := NewGenerator(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.RenderInvoicePdf(ctx, sampleData())

	require.Error(t, err)
	assert.True(t, ierr.IsArtifact(err))
}
