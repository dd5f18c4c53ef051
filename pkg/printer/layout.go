package printer

import (
	"strings"
	"unicode/utf8"
)

// Align is a line alignment
type Align byte

const (
	AlignLeft   Align = 0
	AlignCenter Align = 1
	AlignRight  Align = 2
)

// DefaultWidth is the character width of 58mm paper
const DefaultWidth = 32

// TrailingFeeds is the number of blank lines fed after content so the paper
// clears the cutter.
const TrailingFeeds = 4

// Line is one printed row. A line with QR set is printed as a QR code image
// and has no plain text form.
type Line struct {
	Align Align
	Text  string
	Bold  bool
	QR    string
}

// Layout is the renderer-neutral form of a printout. Both the ESC/POS and the
// plain text renderers consume the same Layout, so they always agree on
// content and order.
type Layout struct {
	Width int
	Lines []Line
}

// NewLayout creates an empty layout. Width defaults to DefaultWidth.
func NewLayout(width int) *Layout {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Layout{Width: width}
}

// Add appends a plain line
func (l *Layout) Add(align Align, text string) *Layout {
	l.Lines = append(l.Lines, Line{Align: align, Text: text})
	return l
}

// AddBold appends an emphasized line
func (l *Layout) AddBold(align Align, text string) *Layout {
	l.Lines = append(l.Lines, Line{Align: align, Text: text, Bold: true})
	return l
}

// AddQR appends a QR code encoding data
func (l *Layout) AddQR(align Align, data string) *Layout {
	l.Lines = append(l.Lines, Line{Align: align, QR: data})
	return l
}

// Blank appends an empty line
func (l *Layout) Blank() *Layout {
	return l.Add(AlignLeft, "")
}

// Separator appends a full-width rule made of char
func (l *Layout) Separator(char rune) *Layout {
	return l.Add(AlignLeft, strings.Repeat(string(char), l.Width))
}

// Columns appends a line with left text and right text pushed to the edge.
// At least one space separates them.
func (l *Layout) Columns(left, right string) *Layout {
	return l.Add(AlignLeft, SpreadColumns(left, right, l.Width))
}

// Wrapped appends text word-wrapped to the layout width
func (l *Layout) Wrapped(align Align, text string) *Layout {
	for _, row := range WordWrap(text, l.Width) {
		l.Add(align, row)
	}
	return l
}

// SpreadColumns places left and right on one row of width columns
func SpreadColumns(left, right string, width int) string {
	spaces := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// Truncate shortens s to width runes, ending with "..." when cut
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}

// WordWrap breaks text into rows of at most width runes on whitespace.
// Words longer than width are split. Explicit newlines start a new row.
func WordWrap(text string, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	var rows []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			rows = append(rows, "")
			continue
		}
		var current []rune
		for _, w := range words {
			word := []rune(w)
			for len(word) > width {
				if len(current) > 0 {
					rows = append(rows, string(current))
					current = nil
				}
				rows = append(rows, string(word[:width]))
				word = word[width:]
			}
			if len(word) == 0 {
				continue
			}
			switch {
			case len(current) == 0:
				current = append(current, word...)
			case len(current)+1+len(word) <= width:
				current = append(append(current, ' '), word...)
			default:
				rows = append(rows, string(current))
				current = append([]rune(nil), word...)
			}
		}
		if len(current) > 0 {
			rows = append(rows, string(current))
		}
	}
	return rows
}
