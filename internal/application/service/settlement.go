package service

import (
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/money"
)

// Settlement is the payment outcome of a checkout
type Settlement struct {
	AmountPaid       money.Amount
	ChangeDue        money.Amount
	RemainingBalance money.Amount
	IsSettled        bool
}

// LineTotal is the manual override when present, else quantity x sell price
func LineTotal(line entity.CartLine) money.Amount {
	if line.ManualOverride != nil {
		return *line.ManualOverride
	}
	return line.SellPrice.Mul(line.Quantity)
}

// CartTotal sums LineTotal over all lines
func CartTotal(lines []entity.CartLine) money.Amount {
	var total money.Amount
	for _, l := range lines {
		total += LineTotal(l)
	}
	return total
}

// CheckoutSettlement computes what is credited at checkout. A nil tender in
// full mode means exact payment. Credit modes need a customer name.
func CheckoutSettlement(total money.Amount, mode enum.PaymentMode, tendered *money.Amount, customer *entity.CustomerInfo) (Settlement, error) {
	if !mode.IsValid() {
		return Settlement{}, apperror.NewFieldError("payment_mode", "Payment mode must be one of full, partial, loan")
	}
	if mode.IsCredit() && !customer.HasName() {
		return Settlement{}, apperror.NewFieldError("customer.name", "Customer name is required for balance tracking")
	}
	if tendered != nil && *tendered < 0 {
		return Settlement{}, apperror.NewFieldError("amount_tendered", "Amount tendered cannot be negative")
	}

	var s Settlement
	switch mode {
	case enum.PaymentModeFull:
		if tendered == nil {
			s.AmountPaid = total
		} else {
			s.AmountPaid = money.Min(*tendered, total)
			s.ChangeDue = money.Max(0, *tendered-total)
		}
	case enum.PaymentModePartial:
		if tendered != nil {
			s.AmountPaid = money.Clamp(*tendered, 0, total)
		}
	case enum.PaymentModeLoan:
		s.AmountPaid = 0
	}
	s.RemainingBalance = money.Max(0, total-s.AmountPaid)
	s.IsSettled = s.RemainingBalance == 0
	return s, nil
}

// ApplyRepayment returns an amended copy of tx with amount credited at now.
// An amount above the remaining balance by no more than money.Tolerance is
// credited as exactly the remaining balance.
func ApplyRepayment(tx *entity.Transaction, amount money.Amount, now time.Time) (*entity.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.NewFieldError("amount", "Repayment amount must be greater than zero")
	}
	if tx.RemainingBalance <= 0 {
		return nil, apperror.NewFieldError("amount", "Transaction is already settled")
	}
	if amount > tx.RemainingBalance+money.Tolerance {
		return nil, apperror.NewFieldError("amount", "Repayment exceeds the remaining balance of "+tx.RemainingBalance.String())
	}

	credited := money.Min(amount, tx.RemainingBalance)
	out := tx.Clone()

	// records created without history get their checkout payment back first
	if len(out.PaymentHistory) == 0 && out.AmountPaid > 0 {
		out.PaymentHistory = []entity.PaymentRecord{{Date: out.Timestamp, Amount: out.AmountPaid}}
	}

	out.AmountPaid += credited
	out.RemainingBalance = money.Max(0, out.Total-out.AmountPaid)
	out.IsSettled = out.RemainingBalance == 0
	out.PaymentHistory = append(out.PaymentHistory, entity.PaymentRecord{
		Date:   now.UnixMilli(),
		Amount: credited,
	})
	return out, nil
}
