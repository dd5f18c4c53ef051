package repository

import (
	"context"

	"github.com/sangkips/salespos-api/internal/domain/entity"
)

// SettingsRepository defines the interface for store settings operations
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.StoreSettings, error)
	Save(ctx context.Context, settings *entity.StoreSettings) error
}
