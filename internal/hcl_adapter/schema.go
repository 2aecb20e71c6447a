package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// rootSchema lists the top-level blocks of a project file. Decoding through a
// schema rather than a struct keeps the blocks in document order.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "project", LabelNames: []string{"name"}},
		{Type: "layer", LabelNames: []string{"name"}},
		{Type: "layout", LabelNames: []string{"name"}},
	},
}

// layoutItemSchema lists the item blocks allowed inside a layout.
var layoutItemSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "map", LabelNames: []string{"name"}},
		{Type: "label", LabelNames: []string{"name"}},
		{Type: "shape", LabelNames: []string{"name"}},
	},
}

// ProjectBlock is the body of a `project` block.
type ProjectBlock struct {
	Title *string `hcl:"title,optional"`
	CRS   *string `hcl:"crs,optional"`
}

// LayerBlock is the body of a `layer` block.
type LayerBlock struct {
	Source      string   `hcl:"source"`
	CRS         *string  `hcl:"crs,optional"`
	StrokeColor *string  `hcl:"stroke_color,optional"`
	FillColor   *string  `hcl:"fill_color,optional"`
	StrokeWidth *float64 `hcl:"stroke_width,optional"`
	PointRadius *float64 `hcl:"point_radius,optional"`
	Visible     *bool    `hcl:"visible,optional"`
}

// LayoutBlock is the body of a `layout` block. Item blocks are left in
// Remain and decoded separately so their order survives.
type LayoutBlock struct {
	PageSize    *string  `hcl:"page_size,optional"`
	Orientation *string  `hcl:"orientation,optional"`
	Width       *float64 `hcl:"width,optional"`
	Height      *float64 `hcl:"height,optional"`
	Remain      hcl.Body `hcl:",remain"`
}

// MapBlock is the body of a `map` item block.
type MapBlock struct {
	Position   []float64 `hcl:"position"`
	Layers     *[]string `hcl:"layers,optional"`
	Extent     []float64 `hcl:"extent,optional"`
	Background *string   `hcl:"background,optional"`
	Frame      *bool     `hcl:"frame,optional"`
}

// LabelBlock is the body of a `label` item block.
type LabelBlock struct {
	Position   []float64      `hcl:"position"`
	Text       hcl.Expression `hcl:"text,optional"`
	FontFamily *string        `hcl:"font_family,optional"`
	FontSize   *float64       `hcl:"font_size,optional"`
	Color      *string        `hcl:"color,optional"`
	Align      *string        `hcl:"align,optional"`
}

// ShapeBlock is the body of a `shape` item block.
type ShapeBlock struct {
	Position    []float64 `hcl:"position"`
	StrokeColor *string   `hcl:"stroke_color,optional"`
	StrokeWidth *float64  `hcl:"stroke_width,optional"`
}
