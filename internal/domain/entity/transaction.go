package entity

import (
	"strings"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/enum"
	"github.com/sangkips/salespos-api/pkg/money"
)

// CustomerInfo identifies the buyer on credit sales
type CustomerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// HasName reports whether a non-blank customer name is present
func (c *CustomerInfo) HasName() bool {
	return c != nil && strings.TrimSpace(c.Name) != ""
}

// CartLine is a catalog item snapshot with a quantity and an optional
// manual total that replaces quantity x sell price for this line only.
type CartLine struct {
	CatalogItem
	Quantity       int           `json:"quantity" validate:"min=1"`
	ManualOverride *money.Amount `json:"manual_total,omitempty"`
}

// PaymentRecord is one credit applied to a transaction
type PaymentRecord struct {
	Date   int64        `json:"date"`
	Amount money.Amount `json:"amount"`
}

// Time returns the payment instant
func (p PaymentRecord) Time() time.Time {
	return time.UnixMilli(p.Date)
}

// SellerSnapshot is the business identity copied onto a transaction when it
// is created.
type SellerSnapshot struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Contact      string `json:"contact,omitempty"`
	Website      string `json:"website,omitempty"`
	ReturnPolicy string `json:"return_policy,omitempty"`
}

// HasIdentity reports whether any of the printed identity fields is set
func (s SellerSnapshot) HasIdentity() bool {
	return s.Name != "" || s.Address != "" || s.Contact != "" || s.Website != ""
}

// Transaction is the ledger's unit of record. Lines and Total are fixed at
// creation; only repayments amend the payment fields afterwards.
type Transaction struct {
	ID               string           `json:"id" validate:"required"`
	Timestamp        int64            `json:"timestamp" validate:"gt=0"`
	Lines            []CartLine       `json:"lines" validate:"required,min=1,dive"`
	Total            money.Amount     `json:"total" validate:"gte=0"`
	PaymentMode      enum.PaymentMode `json:"payment_mode" validate:"required,oneof=full partial loan"`
	AmountPaid       money.Amount     `json:"amount_paid" validate:"gte=0"`
	ChangeDue        money.Amount     `json:"change_due" validate:"gte=0"`
	RemainingBalance money.Amount     `json:"remaining_balance" validate:"gte=0"`
	IsSettled        bool             `json:"is_settled"`
	Customer         *CustomerInfo    `json:"customer,omitempty"`
	PaymentHistory   []PaymentRecord  `json:"payment_history,omitempty" validate:"dive"`
	Seller           SellerSnapshot   `json:"seller"`
}

// CreatedAt returns the creation instant
func (t *Transaction) CreatedAt() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// ShortID is the last 8 characters of the id, upper-cased, as printed on receipts
func (t *Transaction) ShortID() string {
	id := t.ID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

// CustomerName returns the customer name or an empty string
func (t *Transaction) CustomerName() string {
	if t.Customer == nil {
		return ""
	}
	return t.Customer.Name
}

// CostOfGoods sums cost price x quantity over all lines
func (t *Transaction) CostOfGoods() money.Amount {
	var cogs money.Amount
	for _, l := range t.Lines {
		cogs += l.CostPrice.Mul(l.Quantity)
	}
	return cogs
}

// HistoryTotal sums every recorded payment
func (t *Transaction) HistoryTotal() money.Amount {
	var sum money.Amount
	for _, p := range t.PaymentHistory {
		sum += p.Amount
	}
	return sum
}

// Clone returns a deep copy so callers can amend it without touching the original
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Lines = make([]CartLine, len(t.Lines))
	for i, l := range t.Lines {
		c.Lines[i] = l
		if l.ManualOverride != nil {
			v := *l.ManualOverride
			c.Lines[i].ManualOverride = &v
		}
	}
	if t.Customer != nil {
		cust := *t.Customer
		c.Customer = &cust
	}
	if t.PaymentHistory != nil {
		c.PaymentHistory = append([]PaymentRecord(nil), t.PaymentHistory...)
	}
	return &c
}
