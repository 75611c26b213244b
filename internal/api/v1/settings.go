package v1

import (
	"io"
	"net/http"

	"github.com/flexprice/invoicegen/internal/api/dto"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/logger"
	"github.com/flexprice/invoicegen/internal/service"
	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	service service.SettingsService
	logger  *logger.Logger
}

func NewSettingsHandler(service service.SettingsService, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, logger: logger}
}

// GetSettings godoc
// @Summary Get company settings
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	resp, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateSettings godoc
// @Summary Update company settings
// @Description Only non-empty fields are applied
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Settings update"
// @Success 200 {object} dto.SettingsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadLogo godoc
// @Summary Upload the company logo
// @Tags Settings
// @Accept multipart/form-data
// @Produce json
// @Param logo formData file true "PNG or JPEG image"
// @Success 200 {object} dto.LogoUploadResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /settings/logo [post]
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	header, err := c.FormFile("logo")
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("No file uploaded").
			Mark(ierr.ErrValidation))
		return
	}
	if header.Size > service.MaxLogoSize {
		c.Error(ierr.NewErrorf("logo is %d bytes", header.Size).
			WithHint("Logo must be at most 5 MB").
			Mark(ierr.ErrValidation))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.Error(ierr.WithError(err).WithHint("Failed to read uploaded file").Mark(ierr.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxLogoSize+1))
	if err != nil {
		c.Error(ierr.WithError(err).WithHint("Failed to read uploaded file").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UploadLogo(c.Request.Context(), data)
	if err != nil {
		h.logger.Errorw("failed to upload logo", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetLogo godoc
// @Summary Get the company logo
// @Tags Settings
// @Produce image/png,image/jpeg
// @Success 200 {file} file
// @Success 302
// @Failure 404 {object} ierr.ErrorResponse
// @Router /settings/logo [get]
func (h *SettingsHandler) GetLogo(c *gin.Context) {
	artifact, err := h.service.GetLogo(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	if artifact.IsRedirect() {
		c.Redirect(http.StatusFound, artifact.RedirectURL)
		return
	}
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
