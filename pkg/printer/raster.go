package printer

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultQRScale is the number of printer dots per QR module
const DefaultQRScale = 4

// maxRasterDots is the printable width of 58mm paper at 203 dpi
const maxRasterDots = 384

// QRCode prints data as a raster QR code (GS v 0) followed by a line feed.
// The image is printed at the current alignment.
func (d *Document) QRCode(data string, scale int) error {
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	qr.DisableBorder = true
	modules := qr.Bitmap()
	if len(modules) == 0 {
		return fmt.Errorf("qr code: empty bitmap")
	}

	if scale < 1 {
		scale = 1
	}
	for scale > 1 && len(modules)*scale > maxRasterDots {
		scale--
	}
	d.Raster(scaleBitmap(modules, scale))
	d.buf.WriteByte(LF)
	return nil
}

// Raster writes a monochrome bitmap with GS v 0. Rows must share one width;
// true marks a printed dot.
func (d *Document) Raster(rows [][]bool) *Document {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return d
	}
	width := len(rows[0])
	widthBytes := (width + 7) / 8
	height := len(rows)

	d.buf.Write([]byte{
		GS, 'v', '0', 0,
		byte(widthBytes % 256), byte(widthBytes / 256),
		byte(height % 256), byte(height / 256),
	})
	for _, row := range rows {
		for x := 0; x < widthBytes*8; x += 8 {
			var b byte
			for bit := 0; bit < 8; bit++ {
				if px := x + bit; px < width && row[px] {
					b |= 0x80 >> bit
				}
			}
			d.buf.WriteByte(b)
		}
	}
	return d
}

func scaleBitmap(modules [][]bool, scale int) [][]bool {
	out := make([][]bool, 0, len(modules)*scale)
	for _, row := range modules {
		scaled := make([]bool, 0, len(row)*scale)
		for _, dot := range row {
			for i := 0; i < scale; i++ {
				scaled = append(scaled, dot)
			}
		}
		for i := 0; i < scale; i++ {
			out = append(out, scaled)
		}
	}
	return out
}
