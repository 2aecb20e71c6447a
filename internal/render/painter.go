package render

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
)

// canvas is a drawing surface in page millimetres. The PDF and raster
// backends implement it.
type canvas interface {
	FillRect(b mapdoc.Box, c color.NRGBA)
	StrokeRect(b mapdoc.Box, c color.NRGBA, width float64)
	PushClip(b mapdoc.Box)
	PopClip()
	// FillPolygon fills rings[0] minus the holes rings[1:].
	FillPolygon(rings [][]orb.Point, c color.NRGBA)
	StrokePath(pts []orb.Point, closed bool, c color.NRGBA, width float64)
	FillCircle(center orb.Point, r float64, c color.NRGBA)
	// Text draws s with its baseline starting at (x, y).
	Text(x, y float64, s string, f *Font, sizePt float64, c color.NRGBA) error
}

const (
	frameBorderWidth = 0.3 // mm
	lineSpacing      = 1.2
)

var black = color.NRGBA{A: 0xff}

// painter draws a layout's items, in order, onto a canvas.
type painter struct {
	layout *Layout
	c      canvas
	vars   mapdoc.TemplateVars
	logger *slog.Logger
}

func (p *painter) paint(ctx context.Context) error {
	for _, item := range p.layout.items {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch it := item.(type) {
		case *MapFrame:
			err = p.drawMap(it)
		case *Label:
			err = p.drawLabel(it)
		case *Shape:
			p.c.StrokeRect(it.def.Box, it.def.Stroke, it.def.StrokeWidth)
		}
		if err != nil {
			return fmt.Errorf("item %q: %w", item.ID(), err)
		}
	}
	return nil
}

func (p *painter) drawMap(m *MapFrame) error {
	box := m.def.Box
	if m.def.Background.A > 0 {
		p.c.FillRect(box, m.def.Background)
	}

	crs, err := geo.Lookup(m.project.CRS())
	if err != nil {
		return err
	}
	xf := newFrameTransform(m.Extent(), box)

	p.c.PushClip(box)
	for _, name := range m.def.Layers {
		layer, ok := m.project.layers[name]
		if !ok {
			continue
		}
		geoms, err := m.features(layer, xf.visible, crs)
		if err != nil {
			p.c.PopClip()
			return err
		}
		style := layer.def.Style
		bound := xf.visible.Pad(xf.mapUnits(style.StrokeWidth + style.PointRadius + 1))
		for _, g := range geoms {
			g = clip.Geometry(bound, orb.Clone(g))
			if g == nil {
				continue
			}
			p.drawGeometry(g, style, xf)
		}
	}
	p.c.PopClip()

	if m.def.Frame {
		p.c.StrokeRect(box, black, frameBorderWidth)
	}
	return nil
}

// features returns the layer's geometries for visible, reusing the frame's
// cache while the visible extent is unchanged.
func (m *MapFrame) features(layer *Layer, visible geo.Rect, crs geo.CRS) ([]orb.Geometry, error) {
	if m.cached == nil || !m.cachedFor.Equal(visible) {
		m.cached = make(map[string][]orb.Geometry)
		m.cachedFor = visible
	}
	if geoms, ok := m.cached[layer.Name()]; ok {
		return geoms, nil
	}
	geoms, err := layer.Query(visible, crs)
	if err != nil {
		return nil, err
	}
	m.cached[layer.Name()] = geoms
	return geoms, nil
}

func (p *painter) drawGeometry(g orb.Geometry, style mapdoc.Style, xf frameTransform) {
	switch g := g.(type) {
	case orb.Point:
		fill := style.Fill
		if fill.A == 0 {
			fill = style.Stroke
		}
		p.c.FillCircle(xf.page(g), style.PointRadius, fill)
	case orb.MultiPoint:
		for _, pt := range g {
			p.drawGeometry(pt, style, xf)
		}
	case orb.LineString:
		if style.Stroke.A > 0 && style.StrokeWidth > 0 {
			p.c.StrokePath(pagePoints(g, xf), false, style.Stroke, style.StrokeWidth)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			p.drawGeometry(ls, style, xf)
		}
	case orb.Ring:
		p.drawGeometry(orb.Polygon{g}, style, xf)
	case orb.Polygon:
		if len(g) == 0 {
			return
		}
		rings := make([][]orb.Point, len(g))
		for i, r := range g {
			rings[i] = pagePoints(r, xf)
		}
		if style.Fill.A > 0 {
			p.c.FillPolygon(rings, style.Fill)
		}
		if style.Stroke.A > 0 && style.StrokeWidth > 0 {
			for _, r := range rings {
				p.c.StrokePath(r, true, style.Stroke, style.StrokeWidth)
			}
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			p.drawGeometry(poly, style, xf)
		}
	case orb.Collection:
		for _, child := range g {
			p.drawGeometry(child, style, xf)
		}
	case orb.Bound:
		p.drawGeometry(g.ToPolygon(), style, xf)
	}
}

func pagePoints[T ~[]orb.Point](pts T, xf frameTransform) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, pt := range pts {
		out[i] = xf.page(pt)
	}
	return out
}

func (p *painter) drawLabel(l *Label) error {
	text, err := l.def.Text.Render(p.vars)
	if err != nil {
		return err
	}
	format := l.TextFormat()
	font := p.layout.project.runtime.fonts.Resolve(format.Family)
	if !strings.EqualFold(font.Family, format.Family) {
		p.logger.Debug("Font family not installed, using fallback.", "label", l.ID(), "requested", format.Family, "used", font.Family)
	}

	box := l.def.Box
	p.c.PushClip(box)
	defer p.c.PopClip()

	y := box.Y + font.AscentMM(format.PointSize)
	for _, line := range strings.Split(text, "\n") {
		if err := p.c.Text(alignX(box, l.def.Align, font.WidthMM(line, format.PointSize)), y, line, font, format.PointSize, l.def.Color); err != nil {
			return err
		}
		y += format.PointSize * lineSpacing * mmPerPoint
	}
	return nil
}

// alignX is the baseline start of a line of the given width in box.
func alignX(box mapdoc.Box, align mapdoc.Alignment, width float64) float64 {
	switch align {
	case mapdoc.AlignCenter:
		return box.X + (box.W-width)/2
	case mapdoc.AlignRight:
		return box.X + box.W - width
	}
	return box.X
}
