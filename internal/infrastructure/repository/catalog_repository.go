package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
)

type catalogRepository struct {
	store domainRepo.RecordStore
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(store domainRepo.RecordStore) domainRepo.CatalogRepository {
	return &catalogRepository{store: store}
}

func (r *catalogRepository) Save(ctx context.Context, item *entity.CatalogItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", item.ID, err)
	}
	return r.store.Put(ctx, domainRepo.CollectionItems, item.ID, raw)
}

// GetByID returns nil when the item does not exist
func (r *catalogRepository) GetByID(ctx context.Context, id string) (*entity.CatalogItem, error) {
	raw, err := r.store.Get(ctx, domainRepo.CollectionItems, id)
	if err != nil || raw == nil {
		return nil, err
	}
	var item entity.CatalogItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", id, err)
	}
	return &item, nil
}

// GetByIDs skips ids that do not exist
func (r *catalogRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.CatalogItem, error) {
	items := make([]entity.CatalogItem, 0, len(ids))
	for _, id := range ids {
		item, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

// List returns every item ordered by name
func (r *catalogRepository) List(ctx context.Context) ([]entity.CatalogItem, error) {
	records, err := r.store.GetAll(ctx, domainRepo.CollectionItems)
	if err != nil {
		return nil, err
	}
	items := make([]entity.CatalogItem, 0, len(records))
	for _, rec := range records {
		var item entity.CatalogItem
		if err := json.Unmarshal(rec.Value, &item); err != nil {
			return nil, fmt.Errorf("decode item %s: %w", rec.Key, err)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

func (r *catalogRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domainRepo.CollectionItems, id)
}

func (r *catalogRepository) Clear(ctx context.Context) error {
	return r.store.Clear(ctx, domainRepo.CollectionItems)
}
