package render

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
)

// MapFrame draws a project's layers for an extent in project CRS units.
type MapFrame struct {
	def     *mapdoc.MapItem
	project *Project

	extent    geo.Rect
	hasExtent bool

	// cached is the query result for cachedFor; Refresh drops it.
	cached    map[string][]orb.Geometry
	cachedFor geo.Rect
}

var _ engine.MapFrame = (*MapFrame)(nil)

func newMapFrame(def *mapdoc.MapItem, p *Project) *MapFrame {
	m := &MapFrame{def: def, project: p}
	if def.Extent != nil {
		e := def.Extent
		m.extent = geo.NewRect(e[0], e[1], e[2], e[3])
		m.hasExtent = true
	}
	return m
}

// ID is the item name.
func (m *MapFrame) ID() string { return m.def.Name }

// Extent is the requested extent. Before any extent is set it is the
// combined extent of the frame's layers.
func (m *MapFrame) Extent() geo.Rect {
	if m.hasExtent {
		return m.extent
	}
	return m.project.layersExtent(m.def.Layers)
}

// SetExtent sets the requested extent.
func (m *MapFrame) SetExtent(r geo.Rect) {
	m.extent = r
	m.hasExtent = true
}

// Refresh drops cached layer queries.
func (m *MapFrame) Refresh() {
	m.cached = nil
}

// visibleExtent grows ext around its center so it has the aspect ratio of
// the frame box. Degenerate extents are widened to one map unit.
func visibleExtent(ext geo.Rect, box mapdoc.Box) geo.Rect {
	w, h := ext.Max[0]-ext.Min[0], ext.Max[1]-ext.Min[1]
	if w <= 0 && h <= 0 {
		w, h = 1, 1
	} else if w <= 0 {
		w = h * box.W / box.H
	} else if h <= 0 {
		h = w * box.H / box.W
	}

	aspect := box.W / box.H
	if w/h < aspect {
		w = h * aspect
	} else {
		h = w / aspect
	}
	c := ext.Center()
	return geo.Rect{
		Min: orb.Point{c[0] - w/2, c[1] - h/2},
		Max: orb.Point{c[0] + w/2, c[1] + h/2},
	}
}

// frameTransform maps project coordinates inside a visible extent onto the
// frame box on the page.
type frameTransform struct {
	visible geo.Rect
	box     mapdoc.Box
	scale   float64 // mm per map unit
}

func newFrameTransform(ext geo.Rect, box mapdoc.Box) frameTransform {
	vis := visibleExtent(ext, box)
	return frameTransform{
		visible: vis,
		box:     box,
		scale:   box.W / (vis.Max[0] - vis.Min[0]),
	}
}

func (t frameTransform) page(p orb.Point) orb.Point {
	return orb.Point{
		t.box.X + (p[0]-t.visible.Min[0])*t.scale,
		t.box.Y + (t.visible.Max[1]-p[1])*t.scale,
	}
}

// mapUnits converts a page length in mm to map units.
func (t frameTransform) mapUnits(mm float64) float64 {
	if t.scale == 0 || math.IsInf(t.scale, 0) {
		return 0
	}
	return mm / t.scale
}

// Label is a text item whose font can be changed.
type Label struct {
	def    *mapdoc.LabelItem
	format engine.TextFormat
}

var _ engine.Label = (*Label)(nil)

func newLabel(def *mapdoc.LabelItem) *Label {
	return &Label{
		def:    def,
		format: engine.TextFormat{Family: def.FontFamily, PointSize: def.FontSize},
	}
}

// ID is the item name.
func (l *Label) ID() string { return l.def.Name }

// TextFormat returns the current font.
func (l *Label) TextFormat() engine.TextFormat { return l.format }

// SetTextFormat replaces the font.
func (l *Label) SetTextFormat(f engine.TextFormat) { l.format = f }

// Shape is a decorative rectangle with no capabilities beyond being an item.
type Shape struct {
	def *mapdoc.ShapeItem
}

// ID is the item name.
func (s *Shape) ID() string { return s.def.Name }
