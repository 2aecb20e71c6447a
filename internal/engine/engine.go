package engine

import (
	"context"

	"github.com/vk/exportmap/internal/geo"
)

// Initializer brings up an engine runtime.
type Initializer interface {
	Init(ctx context.Context) (Runtime, error)
}

// InitFunc adapts a function to the Initializer interface.
type InitFunc func(ctx context.Context) (Runtime, error)

// Init calls f.
func (f InitFunc) Init(ctx context.Context) (Runtime, error) {
	return f(ctx)
}

// Runtime is an initialized engine. Shutdown must be called exactly once
// when the caller is done with it.
type Runtime interface {
	// Version is a human-readable engine version string.
	Version() string
	// OpenProject reads a project file.
	OpenProject(ctx context.Context, path string) (Project, error)
	Shutdown() error
}

// Project is an opened map project.
type Project interface {
	Title() string
	// CRS is the authority identifier of the project CRS.
	CRS() string
	// Layouts returns the print layouts in engine order.
	Layouts() []Layout
}

// Layout is a print layout of a project.
type Layout interface {
	Name() string
	// Items returns the layout items in paint order.
	Items() []Item
	// Exporter returns an exporter bound to this layout.
	Exporter() Exporter
}

// Item is any element of a layout. Capabilities are discovered with type
// assertions to MapFrame and Label; anything else is left alone.
type Item interface {
	ID() string
}

// MapFrame is a layout item that displays map layers for an extent.
type MapFrame interface {
	Item
	Extent() geo.Rect
	SetExtent(geo.Rect)
	// Refresh invalidates cached rendering so the next export uses the
	// current extent.
	Refresh()
}

// TextFormat is the font of a label.
type TextFormat struct {
	Family    string
	PointSize float64
}

// Label is a layout item that renders text.
type Label interface {
	Item
	TextFormat() TextFormat
	SetTextFormat(TextFormat)
}

// Exporter writes a layout to a file.
type Exporter interface {
	ExportToPDF(ctx context.Context, path string, settings PDFSettings) Result
	ExportToImage(ctx context.Context, path string, settings ImageSettings) Result
}

// FirstMapFrame scans items in order and returns the first one that is a
// map frame.
func FirstMapFrame(items []Item) (MapFrame, bool) {
	for _, item := range items {
		if frame, ok := item.(MapFrame); ok {
			return frame, true
		}
	}
	return nil, false
}

// Labels returns every label among items, in order.
func Labels(items []Item) []Label {
	var labels []Label
	for _, item := range items {
		if label, ok := item.(Label); ok {
			labels = append(labels, label)
		}
	}
	return labels
}
