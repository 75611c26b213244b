package service

import (
	"context"
	"path"

	"github.com/flexprice/invoicegen/internal/api/dto"
	"github.com/flexprice/invoicegen/internal/domain/settings"
	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/storage"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/samber/lo"
)

// MaxLogoSize bounds an uploaded logo
const MaxLogoSize = 5 << 20

type SettingsService interface {
	GetSettings(ctx context.Context) (*dto.SettingsResponse, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	UploadLogo(ctx context.Context, data []byte) (*dto.LogoUploadResponse, error)
	GetLogo(ctx context.Context) (*Artifact, error)
}

type settingsService struct {
	ServiceParams
}

func NewSettingsService(params ServiceParams) SettingsService {
	return &settingsService{ServiceParams: params}
}

func (s *settingsService) GetSettings(ctx context.Context) (*dto.SettingsResponse, error) {
	profile, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSettingsResponse(profile), nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	update := req.ToUpdate()
	if update.IsEmpty() {
		return s.GetSettings(ctx)
	}

	profile, err := s.SettingsRepo.Update(ctx, update)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated settings",
		"prefix", profile.Prefix,
		"next_invoice_number", profile.NextInvoiceNumber,
	)
	return dto.NewSettingsResponse(profile), nil
}

var logoTypes = []string{matchers.TypePng.Extension, matchers.TypeJpeg.Extension}

func (s *settingsService) UploadLogo(ctx context.Context, data []byte) (*dto.LogoUploadResponse, error) {
	if len(data) == 0 {
		return nil, ierr.NewError("no file uploaded").
			WithHint("No file uploaded").
			Mark(ierr.ErrValidation)
	}
	if len(data) > MaxLogoSize {
		return nil, ierr.NewErrorf("logo is %d bytes", len(data)).
			WithHint("Logo must be at most 5 MB").
			WithReportableDetails(map[string]any{
				"size":    len(data),
				"maxSize": MaxLogoSize,
			}).
			Mark(ierr.ErrValidation)
	}

	kind, err := filetype.Match(data)
	if err != nil || !lo.Contains(logoTypes, kind.Extension) {
		return nil, ierr.NewError("unsupported logo type").
			WithHint("Logo must be a PNG or JPEG image").
			WithReportableDetails(map[string]any{
				"type": kind.MIME.Value,
			}).
			Mark(ierr.ErrValidation)
	}

	key := storage.NewLogoKey(kind.Extension)
	if err := s.DocumentStore.Put(ctx, key, data, kind.MIME.Value); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to upload logo").
			Mark(ierr.ErrArtifact)
	}

	if _, err := s.SettingsRepo.Update(ctx, settings.Update{LogoPath: &key}); err != nil {
		return nil, err
	}

	s.Logger.Infow("uploaded company logo", "logo_path", key, "size", len(data))
	return &dto.LogoUploadResponse{LogoPath: key}, nil
}

func (s *settingsService) GetLogo(ctx context.Context) (*Artifact, error) {
	profile, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if profile.LogoPath == "" {
		return nil, ierr.NewError("logo not configured").
			WithHint("Logo not found").
			Mark(ierr.ErrNotFound)
	}

	artifact := &Artifact{
		FileName:    path.Base(profile.LogoPath),
		ContentType: contentTypeFor(profile.LogoPath),
	}

	if s.Config.Artifacts.Redirect && s.DocumentStore.CanPresign() {
		url, err := s.DocumentStore.PresignedURL(ctx, profile.LogoPath)
		if err == nil {
			artifact.RedirectURL = url
			return artifact, nil
		}
		s.Logger.Warnw("failed to presign logo, streaming instead", "logo_path", profile.LogoPath, "error", err)
	}

	data, err := s.DocumentStore.Get(ctx, profile.LogoPath)
	if err != nil {
		return nil, err
	}
	artifact.Data = data
	return artifact, nil
}
