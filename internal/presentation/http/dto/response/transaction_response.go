package response

import (
	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/pkg/pagination"
)

// TransactionResponse is a ledger record plus the receipt number printed for it
type TransactionResponse struct {
	*entity.Transaction
	ReceiptNo string `json:"receipt_no"`
}

// NewTransactionResponse wraps tx
func NewTransactionResponse(tx *entity.Transaction) *TransactionResponse {
	return &TransactionResponse{Transaction: tx, ReceiptNo: tx.ShortID()}
}

// NewTransactionPage wraps every record of a page
func NewTransactionPage(page *pagination.PaginatedResult[entity.Transaction]) *pagination.PaginatedResult[TransactionResponse] {
	items := make([]TransactionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *NewTransactionResponse(&page.Items[i]))
	}
	return pagination.NewPaginatedResult(items, page.Pagination)
}
