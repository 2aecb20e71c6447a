package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/paulmach/orb"
	"github.com/vk/exportmap/internal/mapdoc"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type faceKey struct {
	font *Font
	size float64
}

// rasterCanvas draws onto an RGBA image using golang.org/x/image/vector.
// Every shape is rasterized into a mask sized to its own pixel bounds
// clipped to the current clip rectangle.
type rasterCanvas struct {
	img   *image.RGBA
	dpi   float64
	scale float64 // pixels per mm
	clips []image.Rectangle
	z     vector.Rasterizer
	faces map[faceKey]font.Face
}

// pixelSize is the image size of a page of w×h mm at dpi.
func pixelSize(wMM, hMM, dpi float64) image.Point {
	return image.Point{
		X: int(math.Round(wMM / 25.4 * dpi)),
		Y: int(math.Round(hMM / 25.4 * dpi)),
	}
}

func newRasterCanvas(size image.Point, dpi float64, background color.Color) *rasterCanvas {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	return &rasterCanvas{
		img:   img,
		dpi:   dpi,
		scale: dpi / 25.4,
		faces: make(map[faceKey]font.Face),
	}
}

func (c *rasterCanvas) close() {
	for _, f := range c.faces {
		f.Close()
	}
}

func (c *rasterCanvas) clip() image.Rectangle {
	if n := len(c.clips); n > 0 {
		return c.clips[n-1]
	}
	return c.img.Bounds()
}

func (c *rasterCanvas) px(p orb.Point) orb.Point {
	return orb.Point{p[0] * c.scale, p[1] * c.scale}
}

func (c *rasterCanvas) pxRect(b mapdoc.Box) image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X*c.scale)), int(math.Floor(b.Y*c.scale)),
		int(math.Ceil((b.X+b.W)*c.scale)), int(math.Ceil((b.Y+b.H)*c.scale)),
	)
}

func (c *rasterCanvas) PushClip(b mapdoc.Box) {
	c.clips = append(c.clips, c.clip().Intersect(c.pxRect(b)))
}

func (c *rasterCanvas) PopClip() {
	if n := len(c.clips); n > 0 {
		c.clips = c.clips[:n-1]
	}
}

func (c *rasterCanvas) FillRect(b mapdoc.Box, col color.NRGBA) {
	r := c.pxRect(b).Intersect(c.clip())
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *rasterCanvas) StrokeRect(b mapdoc.Box, col color.NRGBA, width float64) {
	if col.A == 0 || width <= 0 {
		return
	}
	h := width / 2
	paths := [][]orb.Point{oriented(c.toPx(rectPath(b.X-h, b.Y-h, b.X+b.W+h, b.Y+b.H+h)), true)}
	if b.W > width && b.H > width {
		inner := rectPath(b.X+h, b.Y+h, b.X+b.W-h, b.Y+b.H-h)
		paths = append(paths, oriented(c.toPx(inner), false))
	}
	c.fillPx(paths, col)
}

func rectPath(x0, y0, x1, y1 float64) []orb.Point {
	return []orb.Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func (c *rasterCanvas) toPx(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = c.px(p)
	}
	return out
}

func (c *rasterCanvas) FillPolygon(rings [][]orb.Point, col color.NRGBA) {
	paths := make([][]orb.Point, 0, len(rings))
	for i, r := range rings {
		if len(r) < 3 {
			continue
		}
		paths = append(paths, oriented(c.toPx(r), i == 0))
	}
	c.fillPx(paths, col)
}

func (c *rasterCanvas) StrokePath(pts []orb.Point, closed bool, col color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	half := math.Max(width*c.scale/2, 0.5)
	px := c.toPx(pts)
	if closed {
		px = append(px, px[0])
	}

	var paths [][]orb.Point
	for i := 0; i+1 < len(px); i++ {
		a, b := px[i], px[i+1]
		dx, dy := b[0]-a[0], b[1]-a[1]
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		quad := []orb.Point{
			{a[0] + nx, a[1] + ny},
			{b[0] + nx, b[1] + ny},
			{b[0] - nx, b[1] - ny},
			{a[0] - nx, a[1] - ny},
		}
		paths = append(paths, oriented(quad, true))
	}
	// Round joins and caps.
	for _, p := range px {
		paths = append(paths, circlePath(p, half))
	}
	c.fillPx(paths, col)
}

func (c *rasterCanvas) FillCircle(center orb.Point, r float64, col color.NRGBA) {
	c.fillPx([][]orb.Point{circlePath(c.px(center), math.Max(r*c.scale, 0.5))}, col)
}

// circlePath approximates a circle in pixel space with positive orientation.
func circlePath(center orb.Point, r float64) []orb.Point {
	n := int(math.Min(math.Max(r, 8), 64))
	pts := make([]orb.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = orb.Point{center[0] + r*math.Cos(a), center[1] + r*math.Sin(a)}
	}
	return pts
}

// signedArea is positive for rings running clockwise on screen (y down).
func signedArea(pts []orb.Point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return a / 2
}

// oriented returns pts with positive signed area when positive is true and
// negative otherwise. The rasterizer accumulates signed coverage, so holes
// must run opposite to their outer ring.
func oriented(pts []orb.Point, positive bool) []orb.Point {
	if (signedArea(pts) >= 0) == positive {
		return pts
	}
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// fillPx rasterizes closed pixel-space paths as one mask and composites col
// through it.
func (c *rasterCanvas) fillPx(paths [][]orb.Point, col color.NRGBA) {
	if col.A == 0 || len(paths) == 0 {
		return
	}
	var bound orb.Bound
	first := true
	for _, path := range paths {
		for _, p := range path {
			if first {
				bound = orb.Bound{Min: p, Max: p}
				first = false
				continue
			}
			bound = bound.Extend(p)
		}
	}
	r := image.Rect(
		int(math.Floor(bound.Min[0])), int(math.Floor(bound.Min[1])),
		int(math.Ceil(bound.Max[0]))+1, int(math.Ceil(bound.Max[1]))+1,
	).Intersect(c.clip())
	if r.Empty() {
		return
	}

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	c.z.Reset(r.Dx(), r.Dy())
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		c.z.MoveTo(float32(path[0][0]-ox), float32(path[0][1]-oy))
		for _, p := range path[1:] {
			c.z.LineTo(float32(p[0]-ox), float32(p[1]-oy))
		}
		c.z.ClosePath()
	}
	c.z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

func (c *rasterCanvas) face(f *Font, sizePt float64) (font.Face, error) {
	key := faceKey{font: f, size: sizePt}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	face, err := f.Face(sizePt, c.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to create face for %q at %gpt: %w", f.Family, sizePt, err)
	}
	c.faces[key] = face
	return face, nil
}

func (c *rasterCanvas) Text(x, y float64, s string, f *Font, sizePt float64, col color.NRGBA) error {
	if s == "" {
		return nil
	}
	face, err := c.face(f, sizePt)
	if err != nil {
		return err
	}
	dst, ok := c.img.SubImage(c.clip()).(*image.RGBA)
	if !ok {
		return nil
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * c.scale * 64)),
			Y: fixed.Int26_6(math.Round(y * c.scale * 64)),
		},
	}
	d.DrawString(s)
	return nil
}
