package v1

import (
	"net/http"

	"github.com/flexprice/invoicegen/internal/api/dto"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/service"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService  service.InvoiceService
	artifactService service.ArtifactService
	logger          *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, artifactService service.ArtifactService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		artifactService: artifactService,
		logger:          logger,
	}
}

// GenerateInvoice godoc
// @Summary Generate an invoice from a prompt
// @Description Extract invoice details from free text, reserve the next invoice number and persist the invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body dto.GenerateInvoiceRequest true "Generate invoice request"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices/generate [post]
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	var req dto.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.GenerateInvoice(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to generate invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetInvoice godoc
// @Summary Get an invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").WithHint("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListInvoices godoc
// @Summary List invoices
// @Description List every invoice, newest first
// @Tags Invoices
// @Produce json
// @Success 200 {array} dto.InvoiceResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	resp, err := h.invoiceService.ListInvoices(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadInvoice godoc
// @Summary Download the invoice document
// @Description Streams the PDF, or redirects to a signed URL when the store supports it
// @Tags Invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Success 302
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices/{id}/download [get]
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").WithHint("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	artifact, err := h.artifactService.GetInvoiceArtifact(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to get invoice document", "error", err, "invoice_id", id)
		c.Error(err)
		return
	}

	writeArtifact(c, artifact)
}

// writeArtifact redirects to a signed URL or streams the bytes as an attachment
func writeArtifact(c *gin.Context, artifact *service.Artifact) {
	if artifact.IsRedirect() {
		c.Redirect(http.StatusFound, artifact.RedirectURL)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
