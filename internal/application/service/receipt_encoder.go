package service

import (
	"fmt"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/pkg/printer"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ThankYouLine closes every receipt
const ThankYouLine = "Thank you for shopping with us!"

// ReceiptEncoder renders transactions as ESC/POS bytes or plain text. Both
// forms come from the same layout.
type ReceiptEncoder struct {
	width   int
	charset printer.Charset
	autoCut bool
	qr      bool
	loc     *time.Location
}

// ReceiptOptions configure a ReceiptEncoder
type ReceiptOptions struct {
	Width     int
	Charset   printer.Charset
	AutoCut   bool
	// WebsiteQR prints the seller website as a QR code in the byte stream
	WebsiteQR bool
	Location  *time.Location
}

// NewReceiptEncoder creates an encoder. Width defaults to 58mm paper.
func NewReceiptEncoder(opts ReceiptOptions) *ReceiptEncoder {
	if opts.Width <= 0 {
		opts.Width = printer.DefaultWidth
	}
	if opts.Charset == "" {
		opts.Charset = printer.CharsetUTF8
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &ReceiptEncoder{
		width:   opts.Width,
		charset: opts.Charset,
		autoCut: opts.AutoCut,
		qr:      opts.WebsiteQR,
		loc:     opts.Location,
	}
}

// Layout builds the printable rows for tx
func (e *ReceiptEncoder) Layout(tx *entity.Transaction) *printer.Layout {
	return e.layoutReceipt(entity.NewReceipt(tx, e.loc))
}

// Encode renders tx as an ESC/POS command stream
func (e *ReceiptEncoder) Encode(tx *entity.Transaction) []byte {
	return e.encodeLayout(e.Layout(tx))
}

// PlainText renders tx as monospace text
func (e *ReceiptEncoder) PlainText(tx *entity.Transaction) string {
	return printer.PlainText(e.Layout(tx))
}

func (e *ReceiptEncoder) encodeLayout(l *printer.Layout) []byte {
	doc := printer.NewDocumentWithCharset(e.width, e.charset).Render(l)
	if e.autoCut {
		doc.PartialCut()
	}
	return doc.Bytes()
}

func (e *ReceiptEncoder) layoutReceipt(r *entity.Receipt) *printer.Layout {
	l := printer.NewLayout(e.width)

	// Seller identity
	if r.Seller.HasIdentity() {
		if r.Seller.Name != "" {
			l.Add(printer.AlignCenter, upper(r.Seller.Name))
		}
		if r.Seller.Address != "" {
			l.Wrapped(printer.AlignCenter, r.Seller.Address)
		}
		if r.Seller.Contact != "" {
			l.Add(printer.AlignCenter, "Tel: "+r.Seller.Contact)
		}
		if r.Seller.Website != "" {
			l.Add(printer.AlignCenter, r.Seller.Website)
			if e.qr {
				l.AddQR(printer.AlignCenter, r.Seller.Website)
			}
		}
		l.Separator('-')
	}

	// Receipt metadata
	l.Add(printer.AlignLeft, "Receipt Number: "+r.ReceiptNo)
	l.Add(printer.AlignLeft, "Date: "+r.Date)
	l.Add(printer.AlignLeft, "Payment Type: "+r.PaymentMode)
	if r.Customer != "" {
		l.Add(printer.AlignLeft, "Customer: "+r.Customer)
	}
	l.Separator('-')

	// Items
	for _, item := range r.Items {
		l.Add(printer.AlignLeft, printer.Truncate(item.Name, e.width))
		l.Columns(fmt.Sprintf("%d x %s", item.Quantity, item.UnitPrice), item.Total.String())
	}
	l.Separator('-')

	// Totals
	l.Add(printer.AlignRight, "Total Due: "+r.Total.String())
	l.Add(printer.AlignRight, "Amount Paid: "+r.Paid.String())
	if r.Change > 0 {
		l.Add(printer.AlignRight, "Change Due: "+r.Change.String())
	}
	if r.Balance > 0 {
		l.AddBold(printer.AlignRight, "Remaining Balance: "+r.Balance.String())
	}
	l.Separator('-')

	if r.Seller.ReturnPolicy != "" {
		l.Wrapped(printer.AlignCenter, r.Seller.ReturnPolicy)
		l.Blank()
	}
	l.Add(printer.AlignCenter, ThankYouLine)
	return l
}

// TestPageLayout is a short printout used to check the printer link
func (e *ReceiptEncoder) TestPageLayout(deviceName string, at time.Time) *printer.Layout {
	l := printer.NewLayout(e.width)
	l.AddBold(printer.AlignCenter, "PRINTER TEST")
	l.Separator('-')
	l.Add(printer.AlignLeft, "Device: "+deviceName)
	l.Add(printer.AlignLeft, "Time: "+at.In(e.loc).Format(entity.ReceiptDateLayout))
	l.Columns("Left", "Right")
	l.Separator('-')
	l.Add(printer.AlignCenter, "Printer is working")
	return l
}

// upper uses full Unicode case mapping; a Caser is stateful so one is built per call
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
