package repository

import (
	"context"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
)

type settingsRepository struct {
	store domainRepo.RecordStore
}

// NewSettingsRepository creates a new settings repository. Each field is
// stored as its own record keyed by the setting name.
func NewSettingsRepository(store domainRepo.RecordStore) domainRepo.SettingsRepository {
	return &settingsRepository{store: store}
}

// Get returns the saved settings, falling back to defaults for unset keys
func (r *settingsRepository) Get(ctx context.Context) (*entity.StoreSettings, error) {
	records, err := r.store.GetAll(ctx, domainRepo.CollectionSettings)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(records))
	for _, rec := range records {
		values[rec.Key] = string(rec.Value)
	}
	settings := entity.StoreSettingsFromMap(values)
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entity.StoreSettings) error {
	for key, value := range settings.ToMap() {
		if err := r.store.Put(ctx, domainRepo.CollectionSettings, key, []byte(value)); err != nil {
			return err
		}
	}
	return nil
}
