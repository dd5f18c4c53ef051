package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMode(t *testing.T) {
	m, err := ParsePaymentMode(" LOAN ")
	require.NoError(t, err)
	assert.Equal(t, PaymentModeLoan, m)
	assert.True(t, m.IsCredit())
	assert.False(t, PaymentModeFull.IsCredit())

	_, err = ParsePaymentMode("card")
	assert.Error(t, err)
}

func TestPaymentModeJSON(t *testing.T) {
	var v struct {
		Mode PaymentMode `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"Partial"}`), &v))
	assert.Equal(t, PaymentModePartial, v.Mode)
	assert.Error(t, json.Unmarshal([]byte(`{"mode":"cash"}`), &v))
}
