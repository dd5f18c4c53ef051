package request

import "github.com/sangkips/salespos-api/pkg/money"

// InlineItemRequest is a cart item that is not taken from the catalog
type InlineItemRequest struct {
	ID        string       `json:"id"`
	Name      string       `json:"name" binding:"required"`
	CostPrice money.Amount `json:"cost_price"`
	SellPrice money.Amount `json:"sell_price"`
}

// CartLineRequest is one line of the cart. Either item_id or item is set.
type CartLineRequest struct {
	ItemID      string             `json:"item_id"`
	Item        *InlineItemRequest `json:"item"`
	Quantity    int                `json:"quantity"`
	ManualTotal *money.Amount      `json:"manual_total"`
}

// CustomerRequest identifies the buyer on credit sales
type CustomerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// CreateTransactionRequest represents a checkout
type CreateTransactionRequest struct {
	Lines          []CartLineRequest `json:"lines"`
	PaymentMode    string            `json:"payment_mode" binding:"required"`
	AmountTendered *money.Amount     `json:"amount_tendered"`
	Customer       *CustomerRequest  `json:"customer"`
}

// RepaymentRequest represents a repayment against an open balance
type RepaymentRequest struct {
	Amount money.Amount `json:"amount"`
}

// TransactionFilterRequest represents ledger list query parameters.
// Dates are calendar days (YYYY-MM-DD) in the ledger timezone.
type TransactionFilterRequest struct {
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
	Search      string `form:"search"`
	PaymentMode string `form:"payment_mode"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Outstanding bool   `form:"outstanding"`
}
