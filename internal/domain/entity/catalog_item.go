package entity

import (
	"strings"
	"time"

	"github.com/sangkips/salespos-api/pkg/money"
)

// CatalogItem is a sellable item. Cart lines copy it by value, so edits made
// after a sale never reach the recorded transaction.
type CatalogItem struct {
	ID        string       `json:"id" validate:"required"`
	Name      string       `json:"name" validate:"required"`
	Aliases   string       `json:"aliases"`
	CostPrice money.Amount `json:"cost_price" validate:"gte=0"`
	SellPrice money.Amount `json:"sell_price" validate:"gte=0"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

// Matches reports whether the name or alias text contains query, ignoring case.
// An empty query matches everything.
func (i *CatalogItem) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Name), q) ||
		strings.Contains(strings.ToLower(i.Aliases), q)
}
