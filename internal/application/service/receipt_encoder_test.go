package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	"github.com/sangkips/salespos-api/pkg/printer"
	"github.com/stretchr/testify/assert"
)

func partialSale() *entity.Transaction {
	override := amt("100")
	return &entity.Transaction{
		ID:        "1807061234345678ab",
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC).UnixMilli(),
		Lines: []entity.CartLine{
			{CatalogItem: entity.CatalogItem{ID: "rice", Name: "Rice", SellPrice: amt("150")}, Quantity: 2},
			{CatalogItem: entity.CatalogItem{ID: "sugar", Name: "Sugar", SellPrice: amt("150")}, Quantity: 1, ManualOverride: &override},
		},
		Total:            amt("400"),
		PaymentMode:      enum.PaymentModePartial,
		AmountPaid:       amt("250"),
		RemainingBalance: amt("150"),
		Customer:         &entity.CustomerInfo{Name: "Ana"},
		Seller: entity.SellerSnapshot{
			Name:         "Corner Shop",
			Address:      "12 Market St",
			Contact:      "0712345678",
			ReturnPolicy: entity.DefaultReturnPolicy,
		},
	}
}

func TestReceiptPlainText(t *testing.T) {
	enc := NewReceiptEncoder(ReceiptOptions{Location: time.UTC})

	want := strings.Join([]string{
		"          CORNER SHOP",
		"          12 Market St",
		"        Tel: 0712345678",
		"--------------------------------",
		"Receipt Number: 345678AB",
		"Date: 2026-03-14 09:30",
		"Payment Type: PARTIAL",
		"Customer: Ana",
		"--------------------------------",
		"Rice",
		"2 x 150.00                300.00",
		"Sugar",
		"1 x 150.00                100.00",
		"--------------------------------",
		"               Total Due: 400.00",
		"             Amount Paid: 250.00",
		"       Remaining Balance: 150.00",
		"--------------------------------",
		"Returns accepted within 30 days",
		"         with receipt.",
		"",
		"Thank you for shopping with us!",
	}, "\n") + "\n" + strings.Repeat("\n", printer.TrailingFeeds)

	assert.Equal(t, want, enc.PlainText(partialSale()))
}

func TestReceiptEncodeEmphasisAndDeterminism(t *testing.T) {
	enc := NewReceiptEncoder(ReceiptOptions{Location: time.UTC})
	tx := partialSale()
	out := enc.Encode(tx)

	assert.True(t, bytes.HasPrefix(out, []byte{printer.ESC, '@'}))
	assert.Contains(t, string(out), "\x1bE\x01Remaining Balance: 150.00\n")
	assert.Contains(t, string(out), "\x1ba\x00\x1bE\x00--------------------------------\n")
	assert.True(t, bytes.HasSuffix(out, bytes.Repeat([]byte{printer.LF}, printer.TrailingFeeds)))
	assert.Equal(t, out, enc.Encode(tx))
	assert.NotContains(t, string(out), "Change Due")
}

func TestReceiptOptionalRows(t *testing.T) {
	enc := NewReceiptEncoder(ReceiptOptions{Location: time.UTC, AutoCut: true})
	tx := partialSale()
	tx.PaymentMode = enum.PaymentModeFull
	tx.AmountPaid = amt("400")
	tx.ChangeDue = amt("100")
	tx.RemainingBalance = 0
	tx.IsSettled = true
	tx.Customer = nil
	tx.Seller = entity.SellerSnapshot{}

	text := enc.PlainText(tx)
	assert.Contains(t, text, "Change Due: 100.00")
	assert.NotContains(t, text, "Remaining Balance")
	assert.NotContains(t, text, "Customer:")
	assert.True(t, strings.HasPrefix(text, "Receipt Number: 345678AB\n"))

	out := enc.Encode(tx)
	assert.True(t, bytes.HasSuffix(out, []byte{printer.GS, 'V', 0x01}))
}

func TestReceiptTruncatesLongNames(t *testing.T) {
	enc := NewReceiptEncoder(ReceiptOptions{Location: time.UTC})
	tx := partialSale()
	tx.Lines[0].Name = "Extra Long Basmati Rice Family Pack 25kg"

	text := enc.PlainText(tx)
	assert.Contains(t, text, "\nExtra Long Basmati Rice Famil...\n")
}

func TestReceiptWebsiteQR(t *testing.T) {
	tx := partialSale()
	tx.Seller.Website = "shop.example"

	plain := NewReceiptEncoder(ReceiptOptions{Location: time.UTC})
	withQR := NewReceiptEncoder(ReceiptOptions{Location: time.UTC, WebsiteQR: true})

	assert.Equal(t, plain.PlainText(tx), withQR.PlainText(tx))
	assert.False(t, bytes.Contains(plain.Encode(tx), []byte{printer.GS, 'v', '0'}))
	assert.True(t, bytes.Contains(withQR.Encode(tx), []byte{printer.GS, 'v', '0'}))
}
