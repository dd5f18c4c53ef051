package request

import "github.com/sangkips/salespos-api/pkg/money"

// CatalogItemRequest represents a create or update catalog item request
type CatalogItemRequest struct {
	Name      string       `json:"name" binding:"required,max=255"`
	Aliases   string       `json:"aliases" binding:"max=500"`
	CostPrice money.Amount `json:"cost_price" binding:"gte=0"`
	SellPrice money.Amount `json:"sell_price" binding:"gte=0"`
}

// CatalogFilterRequest represents catalog list query parameters
type CatalogFilterRequest struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Search  string `form:"search"`
}

// CatalogImportItem is one item of a JSON catalog import
type CatalogImportItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Aliases   string       `json:"aliases"`
	CostPrice money.Amount `json:"cost_price"`
	SellPrice money.Amount `json:"sell_price"`
}

// CatalogImportRequest represents a JSON catalog import
type CatalogImportRequest struct {
	Items   []CatalogImportItem `json:"items" binding:"required"`
	Replace bool                `json:"replace"`
}
