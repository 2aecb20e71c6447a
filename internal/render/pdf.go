package render

import (
	"image/color"

	"github.com/go-pdf/fpdf"
	"github.com/paulmach/orb"
	"github.com/vk/exportmap/internal/mapdoc"
)

// coreFont is used when a TrueType font cannot be embedded.
const coreFont = "Helvetica"

// pdfCanvas draws onto a single fpdf page. fpdf errors are sticky and are
// read back by the exporter once painting is done.
type pdfCanvas struct {
	pdf *fpdf.Fpdf
	// embedded records, per family, whether the TrueType font was accepted.
	embedded  map[string]bool
	translate func(string) string
}

func newPDFCanvas(pdf *fpdf.Fpdf) *pdfCanvas {
	return &pdfCanvas{
		pdf:       pdf,
		embedded:  make(map[string]bool),
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *pdfCanvas) withAlpha(a uint8, draw func()) {
	if a < 0xff {
		c.pdf.SetAlpha(float64(a)/0xff, "Normal")
		defer c.pdf.SetAlpha(1, "Normal")
	}
	draw()
}

func (c *pdfCanvas) setFill(col color.NRGBA) {
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
}

func (c *pdfCanvas) setStroke(col color.NRGBA, width float64) {
	c.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
	c.pdf.SetLineWidth(width)
}

func (c *pdfCanvas) FillRect(b mapdoc.Box, col color.NRGBA) {
	c.withAlpha(col.A, func() {
		c.setFill(col)
		c.pdf.Rect(b.X, b.Y, b.W, b.H, "F")
	})
}

func (c *pdfCanvas) StrokeRect(b mapdoc.Box, col color.NRGBA, width float64) {
	if col.A == 0 || width <= 0 {
		return
	}
	c.withAlpha(col.A, func() {
		c.setStroke(col, width)
		c.pdf.SetLineJoinStyle("miter")
		c.pdf.Rect(b.X, b.Y, b.W, b.H, "D")
	})
}

func (c *pdfCanvas) PushClip(b mapdoc.Box) {
	c.pdf.ClipRect(b.X, b.Y, b.W, b.H, false)
}

func (c *pdfCanvas) PopClip() {
	c.pdf.ClipEnd()
}

func (c *pdfCanvas) tracePath(pts []orb.Point) {
	c.pdf.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		c.pdf.LineTo(p[0], p[1])
	}
}

func (c *pdfCanvas) FillPolygon(rings [][]orb.Point, col color.NRGBA) {
	c.withAlpha(col.A, func() {
		c.setFill(col)
		drawn := false
		for _, r := range rings {
			if len(r) < 3 {
				continue
			}
			c.tracePath(r)
			c.pdf.ClosePath()
			drawn = true
		}
		if drawn {
			c.pdf.DrawPath("f*")
		}
	})
}

func (c *pdfCanvas) StrokePath(pts []orb.Point, closed bool, col color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	c.withAlpha(col.A, func() {
		c.setStroke(col, width)
		c.pdf.SetLineCapStyle("round")
		c.pdf.SetLineJoinStyle("round")
		c.tracePath(pts)
		if closed {
			c.pdf.ClosePath()
		}
		c.pdf.DrawPath("D")
	})
}

func (c *pdfCanvas) FillCircle(center orb.Point, r float64, col color.NRGBA) {
	c.withAlpha(col.A, func() {
		c.setFill(col)
		c.pdf.Circle(center[0], center[1], r, "F")
	})
}

// useFont selects f, embedding it on first use. It reports whether the
// TrueType font is in use; if not, the core font is selected instead.
func (c *pdfCanvas) useFont(f *Font, sizePt float64) bool {
	ok, seen := c.embedded[f.Family]
	if !seen {
		c.pdf.AddUTF8FontFromBytes(f.Family, "", f.Data)
		desc := c.pdf.GetFontDesc(f.Family, "")
		ok = desc.Ascent != 0 || desc.Descent != 0
		c.embedded[f.Family] = ok
	}
	if ok {
		c.pdf.SetFont(f.Family, "", sizePt)
	} else {
		c.pdf.SetFont(coreFont, "", sizePt)
	}
	return ok
}

func (c *pdfCanvas) Text(x, y float64, s string, f *Font, sizePt float64, col color.NRGBA) error {
	if s == "" {
		return nil
	}
	if !c.useFont(f, sizePt) {
		s = c.translate(s)
	}
	c.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	c.withAlpha(col.A, func() {
		c.pdf.Text(x, y, s)
	})
	return c.pdf.Error()
}
