package mapdoc

import "image/color"

// Document is the unified, format-agnostic representation of a map project.
type Document struct {
	// Path is the absolute path of the project file.
	Path string
	// Dir is the directory layer sources are resolved against.
	Dir     string
	Project Project
	// Layers and Layouts keep document order.
	Layers  []*Layer
	Layouts []*Layout
}

// Project holds project-wide settings.
type Project struct {
	Name  string
	Title string
	// CRS is the authority identifier of the project CRS, e.g. "EPSG:3857".
	CRS string
}

// Layer is a vector data source drawn inside map frames.
type Layer struct {
	Name string
	// Source is the GeoJSON file, already resolved against Document.Dir.
	Source  string
	CRS     string
	Style   Style
	Visible bool
}

// Transparent is the color used for "no fill".
var Transparent = color.NRGBA{}

// Style describes how a layer's features are drawn. Widths are millimetres.
type Style struct {
	Stroke      color.NRGBA
	Fill        color.NRGBA
	StrokeWidth float64
	PointRadius float64
}

// Layout is a print layout: one page holding positioned items.
type Layout struct {
	Name   string
	Width  float64 // mm
	Height float64 // mm
	// Items are in document order, which is also paint order.
	Items []Item
}

// Box is an item's position on the page in millimetres, origin top-left.
type Box struct {
	X, Y, W, H float64
}

// Item is an element placed on a layout page.
type Item interface {
	ItemName() string
	ItemBox() Box
}

// MapItem is a map frame.
type MapItem struct {
	Name string
	Box  Box
	// Layers names the layers drawn in this frame, in paint order.
	Layers []string
	// Extent is the initial visible extent in project CRS units, or nil.
	Extent     *[4]float64
	Background color.NRGBA
	Frame      bool
}

// Alignment is the horizontal placement of label text within its box.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// LabelItem is a text element.
type LabelItem struct {
	Name       string
	Box        Box
	Text       Template
	FontFamily string
	FontSize   float64 // points
	Color      color.NRGBA
	Align      Alignment
}

// ShapeItem is a rectangle outline.
type ShapeItem struct {
	Name        string
	Box         Box
	Stroke      color.NRGBA
	StrokeWidth float64
}

func (m *MapItem) ItemName() string { return m.Name }
func (m *MapItem) ItemBox() Box     { return m.Box }

func (l *LabelItem) ItemName() string { return l.Name }
func (l *LabelItem) ItemBox() Box     { return l.Box }

func (s *ShapeItem) ItemName() string { return s.Name }
func (s *ShapeItem) ItemBox() Box     { return s.Box }

// Layer returns the layer named name, or nil.
func (d *Document) Layer(name string) *Layer {
	for _, l := range d.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}
