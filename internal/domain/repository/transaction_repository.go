package repository

import (
	"context"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	"github.com/sangkips/salespos-api/pkg/pagination"
)

// TransactionRepository defines the interface for ledger persistence
type TransactionRepository interface {
	Save(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// List returns every transaction ordered by timestamp ascending
	List(ctx context.Context) ([]entity.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// TransactionFilterParams contains filtering parameters for ledger queries
type TransactionFilterParams struct {
	Pagination      *pagination.PaginationParams
	Search          string // customer name or receipt number
	PaymentMode     *enum.PaymentMode
	StartDate       *time.Time
	EndDate         *time.Time
	OutstandingOnly bool
}
