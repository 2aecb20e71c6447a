package mapdoc

import "context"

// Loader is the interface for a format-specific project loader.
type Loader interface {
	// Load reads the project file at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Document, error)
}

// Template is label text that is resolved when a layout is rendered.
type Template interface {
	// Render evaluates the template against vars.
	Render(vars TemplateVars) (string, error)
}

// TemplateVars are the values a label template can refer to.
type TemplateVars struct {
	ProjectTitle string
	ProjectCRS   string
	LayoutName   string
	// MapExtent is the formatted extent of the layout's first map frame, or
	// empty when the layout has none.
	MapExtent  string
	ExportTime string
}

// StaticText is a Template that always renders the same string.
type StaticText string

// Render returns the text unchanged.
func (s StaticText) Render(TemplateVars) (string, error) {
	return string(s), nil
}
