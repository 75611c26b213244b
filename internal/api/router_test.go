package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flexprice/invoicegen/internal/api/dto"
	v1 "github.com/flexprice/invoicegen/internal/api/v1"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/domain/invoice"
	"github.com/flexprice/invoicegen/internal/service"
	"github.com/flexprice/invoicegen/internal/testutil"
	"github.com/flexprice/invoicegen/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router    *gin.Engine
	artifacts service.ArtifactService
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	params := service.NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		nil,
		stores.InvoiceRepo,
		stores.SettingsRepo,
		s.GetExtractor(),
		s.GetPDFGenerator(),
		stores.DocumentStore,
	)
	s.artifacts = service.NewArtifactService(params)
	invoices := service.NewInvoiceService(params, service.NewNumberingService(params), s.artifacts)

	s.router = NewRouter(Handlers{
		Health:   v1.NewHealthHandler(s.GetLogger()),
		Invoice:  v1.NewInvoiceHandler(invoices, s.artifacts, s.GetLogger()),
		Settings: v1.NewSettingsHandler(service.NewSettingsService(params), s.GetLogger()),
	}, s.GetConfig(), s.GetLogger())
}

func (s *RouterSuite) do(method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) doJSON(method, target string, payload any) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)
	return s.do(method, target, body, "application/json")
}

func (s *RouterSuite) decodeError(rec *httptest.ResponseRecorder) ierr.ErrorResponse {
	var resp ierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *RouterSuite) expectExtraction() {
	s.GetExtractor().On("Extract", mock.Anything, mock.Anything).Return(&invoice.ExtractedFields{
		ClientName:         "Acme Corp",
		ServiceDescription: "Website redesign",
		BaseAmount:         "5000",
		GSTPercentage:      "18",
		DueDate:            "2026-11-30",
		Source:             invoice.ExtractionSourceAI,
	}, nil)
}

func (s *RouterSuite) generate() map[string]any {
	rec := s.doJSON(http.MethodPost, "/api/invoices/generate", dto.GenerateInvoiceRequest{
		Prompt:        "Invoice Acme Corp 5000 for website redesign with 18% GST",
		PaymentMethod: string(types.PaymentMethodUPI),
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *RouterSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *RouterSuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(types.HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal("req-123", rec.Header().Get(types.HeaderRequestID))

	rec = s.do(http.MethodGet, "/health", nil, "")
	s.NotEmpty(rec.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestGenerateInvoice() {
	s.expectExtraction()

	body := s.generate()
	s.Equal("INV-001", body["invoiceNumber"])
	s.Equal("Acme Corp", body["clientName"])
	s.Equal("UPI", body["paymentMethod"])
	s.Equal("900", body["gstAmount"])
	s.Equal("5900", body["totalAmount"])
	s.Equal("ai", body["extractionSource"])
	s.NotEmpty(body["id"])

	second := s.generate()
	s.Equal("INV-002", second["invoiceNumber"])
}

func (s *RouterSuite) TestGenerateInvoice_Validation() {
	tests := []struct {
		name string
		body []byte
	}{
		{"malformed json", []byte(`{"prompt":`)},
		{"missing prompt", []byte(`{}`)},
		{"blank prompt", []byte(`{"prompt":"   "}`)},
		{"bad payment method", []byte(`{"prompt":"bill acme","paymentMethod":"barter"}`)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, "/api/invoices/generate", tt.body, "application/json")
			s.Equal(http.StatusBadRequest, rec.Code)

			resp := s.decodeError(rec)
			s.False(resp.Success)
			s.Equal(ierr.ErrCodeValidation, resp.Error.Kind)
			s.NotEmpty(resp.Error.Display)
		})
	}
	s.GetExtractor().AssertNotCalled(s.T(), "Extract", mock.Anything, mock.Anything)
}

func (s *RouterSuite) TestGenerateInvoice_ExtractionFailure() {
	s.GetExtractor().On("Extract", mock.Anything, mock.Anything).
		Return(nil, ierr.NewError("model unavailable").Mark(ierr.ErrExtraction))

	rec := s.doJSON(http.MethodPost, "/api/invoices/generate", dto.GenerateInvoiceRequest{Prompt: "bill acme"})
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(ierr.ErrCodeExtraction, s.decodeError(rec).Error.Kind)
}

func (s *RouterSuite) TestGetAndListInvoices() {
	s.expectExtraction()
	first := s.generate()
	second := s.generate()

	rec := s.do(http.MethodGet, "/api/invoices/"+first["id"].(string), nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var got map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(first["invoiceNumber"], got["invoiceNumber"])

	rec = s.do(http.MethodGet, "/api/invoices", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var list []map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	s.Require().Len(list, 2)
	s.Equal(second["id"], list[0]["id"])
}

func (s *RouterSuite) TestGetInvoice_NotFound() {
	rec := s.do(http.MethodGet, "/api/invoices/inv_missing", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(ierr.ErrCodeNotFound, s.decodeError(rec).Error.Kind)

	rec = s.do(http.MethodGet, "/api/invoices/inv_missing/download", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterSuite) TestDownloadInvoice_Streams() {
	s.expectExtraction()
	body := s.generate()

	rec := s.do(http.MethodGet, "/api/invoices/"+body["id"].(string)+"/download", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="invoice-INV-001.pdf"`, rec.Header().Get("Content-Disposition"))
	s.True(bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func (s *RouterSuite) TestDownloadInvoice_Redirects() {
	s.GetConfig().Artifacts.Redirect = true
	defer func() { s.GetConfig().Artifacts.Redirect = false }()
	s.GetStores().DocumentStore.Presign = true

	s.expectExtraction()
	body := s.generate()
	id := body["id"].(string)

	rec := s.do(http.MethodGet, "/api/invoices/"+id+"/download", nil, "")
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("https://signed.test/invoices/"+id+".pdf", rec.Header().Get("Location"))
}

func (s *RouterSuite) TestSettingsRoundTrip() {
	rec := s.do(http.MethodGet, "/api/settings", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var current map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &current))
	s.Equal("INV-", current["prefix"])

	rec = s.do(http.MethodPut, "/api/settings",
		[]byte(`{"companyName":"Globex","prefix":"GLX-","nextInvoiceNumber":42}`), "application/json")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal("Globex", updated["companyName"])
	s.Equal(current["companyAddress"], updated["companyAddress"])

	s.expectExtraction()
	s.Equal("GLX-042", s.generate()["invoiceNumber"])
}

func (s *RouterSuite) TestUpdateSettings_Invalid() {
	rec := s.do(http.MethodPut, "/api/settings", []byte(`{"nextInvoiceNumber":-1}`), "application/json")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(ierr.ErrCodeValidation, s.decodeError(rec).Error.Kind)
}

func logoForm(s *RouterSuite, field string, data []byte) ([]byte, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "logo.png")
	s.Require().NoError(err)
	_, err = part.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func pngBytes(s *RouterSuite) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))
	return buf.Bytes()
}

func (s *RouterSuite) TestLogoUploadAndFetch() {
	rec := s.do(http.MethodGet, "/api/settings/logo", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)

	logo := pngBytes(s)
	body, contentType := logoForm(s, "logo", logo)
	rec = s.do(http.MethodPost, "/api/settings/logo", body, contentType)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var uploaded dto.LogoUploadResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &uploaded))
	s.Regexp(`^logos/logo-[0-9A-Z]{26}\.png$`, uploaded.LogoPath)

	rec = s.do(http.MethodGet, "/api/settings/logo", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("image/png", rec.Header().Get("Content-Type"))
	s.Equal(logo, rec.Body.Bytes())
}

func (s *RouterSuite) TestLogoUpload_Rejected() {
	s.Run("missing field", func() {
		body, contentType := logoForm(s, "file", pngBytes(s))
		rec := s.do(http.MethodPost, "/api/settings/logo", body, contentType)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("not an image", func() {
		body, contentType := logoForm(s, "logo", []byte("plain text, not a logo"))
		rec := s.do(http.MethodPost, "/api/settings/logo", body, contentType)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(ierr.ErrCodeValidation, s.decodeError(rec).Error.Kind)
	})

	s.Run("too large", func() {
		large := append(pngBytes(s), make([]byte, service.MaxLogoSize)...)
		body, contentType := logoForm(s, "logo", large)
		rec := s.do(http.MethodPost, "/api/settings/logo", body, contentType)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestCORSPreflight() {
	rec := s.do(http.MethodOptions, "/api/invoices", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}
