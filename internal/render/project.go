package render

import (
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
)

// Project is an opened project document with its layers loaded.
type Project struct {
	doc     *mapdoc.Document
	runtime *Runtime
	layers  map[string]*Layer
	layouts []*Layout
}

var _ engine.Project = (*Project)(nil)

// Title is the project title.
func (p *Project) Title() string { return p.doc.Project.Title }

// CRS is the project CRS identifier as written in the document.
func (p *Project) CRS() string { return p.doc.Project.CRS }

// Layouts returns the layouts in document order.
func (p *Project) Layouts() []engine.Layout {
	out := make([]engine.Layout, len(p.layouts))
	for i, l := range p.layouts {
		out[i] = l
	}
	return out
}

// Layer returns a loaded layer by name.
func (p *Project) Layer(name string) (*Layer, bool) {
	l, ok := p.layers[name]
	return l, ok
}

// layersExtent is the union of the named layers' extents in project CRS. It
// is empty when the CRS is unknown or no layer has features.
func (p *Project) layersExtent(names []string) geo.Rect {
	crs, err := geo.Lookup(p.CRS())
	if err != nil {
		return geo.Rect{}
	}
	var out geo.Rect
	found := false
	for _, name := range names {
		layer, ok := p.layers[name]
		if !ok {
			continue
		}
		b, ok, err := layer.Extent(crs)
		if err != nil || !ok {
			continue
		}
		if found {
			out = out.Union(b)
		} else {
			out, found = b, true
		}
	}
	return out
}

// Layout is a print layout of a Project.
type Layout struct {
	def     *mapdoc.Layout
	project *Project
	items   []engine.Item
}

var _ engine.Layout = (*Layout)(nil)

func newLayout(def *mapdoc.Layout, p *Project) *Layout {
	l := &Layout{def: def, project: p}
	for _, item := range def.Items {
		switch it := item.(type) {
		case *mapdoc.MapItem:
			l.items = append(l.items, newMapFrame(it, p))
		case *mapdoc.LabelItem:
			l.items = append(l.items, newLabel(it))
		case *mapdoc.ShapeItem:
			l.items = append(l.items, &Shape{def: it})
		}
	}
	return l
}

// Name is the layout name.
func (l *Layout) Name() string { return l.def.Name }

// Items returns the items in paint order.
func (l *Layout) Items() []engine.Item { return l.items }

// Exporter returns an exporter for this layout.
func (l *Layout) Exporter() engine.Exporter {
	return &Exporter{layout: l}
}
