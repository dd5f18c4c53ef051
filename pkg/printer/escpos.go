package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Charset selects how text is turned into bytes
type Charset string

const (
	CharsetUTF8  Charset = "utf8"
	CharsetCP437 Charset = "cp437"
)

// ParseCharset maps a config value to a Charset, defaulting to UTF-8
func ParseCharset(s string) Charset {
	if strings.EqualFold(strings.TrimSpace(s), string(CharsetCP437)) {
		return CharsetCP437
	}
	return CharsetUTF8
}

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf     bytes.Buffer
	width   int // print width in characters (default 32 for 58mm, 48 for 80mm)
	charset Charset
	encoder *encoding.Encoder
}

// NewDocument creates a new ESC/POS document with the given character width.
// Common widths: 32 for 58mm paper, 48 for 80mm paper.
func NewDocument(charWidth int) *Document {
	return NewDocumentWithCharset(charWidth, CharsetUTF8)
}

// NewDocumentWithCharset is NewDocument with an explicit text encoding.
// CP437 selects code table 0 on the printer and replaces unmappable runes.
func NewDocumentWithCharset(charWidth int, cs Charset) *Document {
	if charWidth <= 0 {
		charWidth = DefaultWidth
	}
	d := &Document{width: charWidth, charset: cs}
	if cs == CharsetCP437 {
		d.encoder = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	}
	d.Init()
	return d
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	if d.charset == CharsetCP437 {
		d.buf.Write([]byte{ESC, 't', 0})
	}
	return d
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align Align) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Raw writes text bytes without a trailing line feed.
func (d *Document) Raw(s string) *Document {
	if d.encoder == nil {
		d.buf.WriteString(s)
		return d
	}
	out, err := d.encoder.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported never fails on unmappable runes; invalid UTF-8 lands here
		out, err = d.encoder.Bytes([]byte(strings.ToValidUTF8(s, "?")))
		if err != nil {
			out = []byte(asciiOnly(s))
		}
	}
	d.buf.Write(out)
	return d
}

// asciiOnly replaces every non-ASCII rune with '?'
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return '?'
		}
		return r
	}, strings.ToValidUTF8(s, "?"))
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.Raw(s)
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char byte) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
func (d *Document) KeyValue(key, value string) *Document {
	return d.Text(SpreadColumns(key, value, d.width))
}

// Render writes every line of the layout, switching alignment and emphasis
// only when they change, then feeds TrailingFeeds blank lines.
func (d *Document) Render(l *Layout) *Document {
	align := AlignLeft
	bold := false
	d.SetAlign(align)
	for _, line := range l.Lines {
		if line.Align != align {
			align = line.Align
			d.SetAlign(align)
		}
		if line.QR != "" {
			if err := d.QRCode(line.QR, DefaultQRScale); err != nil {
				d.Text(line.QR)
			}
			continue
		}
		if line.Bold != bold {
			bold = line.Bold
			d.SetBold(bold)
		}
		d.Text(line.Text)
	}
	if bold {
		d.SetBold(false)
	}
	if align != AlignLeft {
		d.SetAlign(AlignLeft)
	}
	return d.FeedLines(TrailingFeeds)
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Reset clears the buffer and reinitializes the document.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.Init()
	return d
}
