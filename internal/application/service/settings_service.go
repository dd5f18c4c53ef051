package service

import (
	"context"
	"strings"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/repository"
)

// SettingsService handles store settings business logic
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings retrieves the store settings with defaults applied
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.StoreSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettingsInput represents the input for updating settings. Nil fields
// are left unchanged.
type UpdateSettingsInput struct {
	SellerName     *string
	SellerAddress  *string
	SellerContact  *string
	WebsiteURL     *string
	ReturnPolicy   *string
	PrinterAddress *string
}

// UpdateSettings applies the given fields. Existing transactions keep the
// seller snapshot taken when they were created.
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.StoreSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&settings.SellerName, input.SellerName)
	apply(&settings.SellerAddress, input.SellerAddress)
	apply(&settings.SellerContact, input.SellerContact)
	apply(&settings.WebsiteURL, input.WebsiteURL)
	apply(&settings.ReturnPolicy, input.ReturnPolicy)
	apply(&settings.PrinterAddress, input.PrinterAddress)

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
