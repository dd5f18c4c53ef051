package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/money"
	"github.com/sangkips/salespos-api/pkg/pagination"
	"github.com/sangkips/salespos-api/pkg/utils"
)

// CatalogService handles catalog item operations
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	validate    *validator.Validate
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CatalogItemInput represents the create/update item input
type CatalogItemInput struct {
	Name      string
	Aliases   string
	CostPrice money.Amount
	SellPrice money.Amount
}

// CreateItem adds a new catalog item
func (s *CatalogService) CreateItem(ctx context.Context, input *CatalogItemInput) (*entity.CatalogItem, error) {
	now := time.Now()
	item := &entity.CatalogItem{
		ID:        utils.NewUUID(),
		Name:      strings.TrimSpace(input.Name),
		Aliases:   strings.TrimSpace(input.Aliases),
		CostPrice: input.CostPrice,
		SellPrice: input.SellPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.validateItem(item, ""); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem replaces the editable fields of an item. Past transactions keep
// the snapshot they were sold with.
func (s *CatalogService) UpdateItem(ctx context.Context, id string, input *CatalogItemInput) (*entity.CatalogItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Aliases = strings.TrimSpace(input.Aliases)
	item.CostPrice = input.CostPrice
	item.SellPrice = input.SellPrice
	item.UpdatedAt = time.Now()
	if err := s.validateItem(item, ""); err != nil {
		return nil, err
	}

	if err := s.catalogRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an item by ID
func (s *CatalogService) GetItem(ctx context.Context, id string) (*entity.CatalogItem, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Catalog item")
	}
	return item, nil
}

// DeleteItem removes an item
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	return s.catalogRepo.Delete(ctx, id)
}

// ListItems returns items whose name or aliases contain search
func (s *CatalogService) ListItems(ctx context.Context, search string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.CatalogItem], error) {
	items, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]entity.CatalogItem, 0, len(items))
	for i := range items {
		if items[i].Matches(search) {
			matched = append(matched, items[i])
		}
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	return pagination.Paginate(matched, params), nil
}

// ImportItems loads a list of items. With replace the catalog is cleared
// first; otherwise items are upserted by ID. Every item is validated before
// anything is written.
func (s *CatalogService) ImportItems(ctx context.Context, items []entity.CatalogItem, replace bool) (int, error) {
	now := time.Now()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = utils.NewUUID()
		}
		items[i].Name = strings.TrimSpace(items[i].Name)
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
		items[i].UpdatedAt = now
		if err := s.validateItem(&items[i], "items"); err != nil {
			return 0, err
		}
	}

	if replace {
		if err := s.catalogRepo.Clear(ctx); err != nil {
			return 0, err
		}
	}
	for i := range items {
		if err := s.catalogRepo.Save(ctx, &items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// ExportItems returns the full catalog
func (s *CatalogService) ExportItems(ctx context.Context) ([]entity.CatalogItem, error) {
	return s.catalogRepo.List(ctx)
}

func (s *CatalogService) validateItem(item *entity.CatalogItem, prefix string) error {
	return validationError(s.validate.Struct(item), prefix)
}
