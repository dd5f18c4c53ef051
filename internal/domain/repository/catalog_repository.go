package repository

import (
	"context"

	"github.com/sangkips/salespos-api/internal/domain/entity"
)

// CatalogRepository defines the interface for catalog item data operations
type CatalogRepository interface {
	Save(ctx context.Context, item *entity.CatalogItem) error
	GetByID(ctx context.Context, id string) (*entity.CatalogItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.CatalogItem, error)
	List(ctx context.Context) ([]entity.CatalogItem, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
