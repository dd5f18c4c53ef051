package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMode describes how a sale was settled at checkout
type PaymentMode string

const (
	PaymentModeFull    PaymentMode = "full"
	PaymentModePartial PaymentMode = "partial"
	PaymentModeLoan    PaymentMode = "loan"
)

// ParsePaymentMode accepts the mode names case-insensitively
func ParsePaymentMode(s string) (PaymentMode, error) {
	m := PaymentMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown payment mode %q", s)
	}
	return m, nil
}

func (m PaymentMode) String() string {
	return string(m)
}

// IsValid reports whether m is one of the known modes
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeFull, PaymentModePartial, PaymentModeLoan:
		return true
	}
	return false
}

// IsCredit reports whether the mode defers some or all of the payment
func (m PaymentMode) IsCredit() bool {
	return m == PaymentModePartial || m == PaymentModeLoan
}

func (m *PaymentMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentMode(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
