package entity

import (
	"strings"
	"time"

	"github.com/sangkips/salespos-api/pkg/money"
)

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price"`
	Total     money.Amount `json:"total"`
}

// Receipt is a value object representing a printable receipt.
// It is NOT stored - it is composed from a transaction at print time.
type Receipt struct {
	Seller      SellerSnapshot `json:"seller"`
	ReceiptNo   string         `json:"receipt_no"`
	Date        string         `json:"date"`
	PaymentMode string         `json:"payment_mode"`
	Customer    string         `json:"customer,omitempty"`
	Items       []ReceiptItem  `json:"items"`
	Total       money.Amount   `json:"total"`
	Paid        money.Amount   `json:"paid"`
	Change      money.Amount   `json:"change"`
	Balance     money.Amount   `json:"balance"`
}

// ReceiptDateLayout is the date format printed on receipts
const ReceiptDateLayout = "2006-01-02 15:04"

// NewReceipt composes the receipt for tx, formatting the date in loc.
func NewReceipt(tx *Transaction, loc *time.Location) *Receipt {
	if loc == nil {
		loc = time.Local
	}
	r := &Receipt{
		Seller:      tx.Seller,
		ReceiptNo:   tx.ShortID(),
		Date:        tx.CreatedAt().In(loc).Format(ReceiptDateLayout),
		PaymentMode: strings.ToUpper(tx.PaymentMode.String()),
		Customer:    strings.TrimSpace(tx.CustomerName()),
		Total:       tx.Total,
		Paid:        tx.AmountPaid,
		Change:      tx.ChangeDue,
		Balance:     tx.RemainingBalance,
	}
	for _, l := range tx.Lines {
		total := l.SellPrice.Mul(l.Quantity)
		if l.ManualOverride != nil {
			total = *l.ManualOverride
		}
		name := l.Name
		if name == "" {
			name = "Item"
		}
		r.Items = append(r.Items, ReceiptItem{
			Name:      name,
			Quantity:  l.Quantity,
			UnitPrice: l.SellPrice,
			Total:     total,
		})
	}
	return r
}
