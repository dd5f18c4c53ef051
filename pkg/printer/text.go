package printer

import (
	"strings"
	"unicode/utf8"
)

// PlainText renders the layout as monospace text of l.Width columns,
// followed by the same trailing feed the byte stream carries.
func PlainText(l *Layout) string {
	var b strings.Builder
	for _, line := range l.Lines {
		if line.QR != "" {
			continue
		}
		b.WriteString(alignText(line.Text, line.Align, l.Width))
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("\n", TrailingFeeds))
	return b.String()
}

func alignText(s string, align Align, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		return strings.TrimRight(strings.Repeat(" ", pad/2)+s, " ")
	default:
		return s
	}
}
