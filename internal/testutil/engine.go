// Package testutil provides a controllable in-memory engine and log capture
// helpers for tests of the export pipeline.
package testutil

import (
	"context"
	"sync"

	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/geo"
)

// Calls counts the engine operations a test run performed.
type Calls struct {
	Init        int
	Shutdown    int
	OpenProject int
	SetExtent   int
	Refresh     int
	ExportPDF   int
	ExportImage int
}

// Engine is the total number of engine calls.
func (c Calls) Engine() int {
	return c.Init + c.Shutdown + c.OpenProject + c.SetExtent + c.Refresh + c.ExportPDF + c.ExportImage
}

// Exports is the number of export calls of either format.
func (c Calls) Exports() int {
	return c.ExportPDF + c.ExportImage
}

// FakeEngine implements engine.Initializer and engine.Runtime in memory and
// records every call.
type FakeEngine struct {
	// VersionText is returned by Version.
	VersionText string
	// InitErr and OpenErr make Init and OpenProject fail.
	InitErr error
	OpenErr error
	// PanicOnOpen and PanicOnExport, when non-nil, are panicked with.
	PanicOnOpen   any
	PanicOnExport any
	// Project is returned by OpenProject.
	Project *FakeProject
	// Result is returned by both export methods.
	Result engine.Result

	mu                sync.Mutex
	calls             Calls
	lastProjectPath   string
	lastPDFPath       string
	lastPDFSettings   engine.PDFSettings
	lastImagePath     string
	lastImageSettings engine.ImageSettings
}

var (
	_ engine.Initializer = (*FakeEngine)(nil)
	_ engine.Runtime     = (*FakeEngine)(nil)
)

// NewFakeEngine returns an engine whose project is in EPSG:4326 and has one
// layout holding a label, a map frame, a second label and a shape.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		VersionText: "fake 1.0",
		Result:      engine.Success,
		Project: &FakeProject{
			TitleText: "Fake",
			CRSID:     "EPSG:4326",
			LayoutList: []*FakeLayout{{
				LayoutName: "Layout 1",
				ItemList: []engine.Item{
					&FakeLabel{Name: "title", Format: engine.TextFormat{Family: "Arial", PointSize: 18}},
					&FakeMapFrame{Name: "map"},
					&FakeLabel{Name: "note", Format: engine.TextFormat{Family: "Times", PointSize: 9}},
					&FakeItem{Name: "border"},
				},
			}},
		},
	}
}

// Calls returns a snapshot of the call counters.
func (f *FakeEngine) Calls() Calls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastProjectPath is the path given to the last OpenProject call.
func (f *FakeEngine) LastProjectPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastProjectPath
}

// LastPDF returns the arguments of the last ExportToPDF call.
func (f *FakeEngine) LastPDF() (string, engine.PDFSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPDFPath, f.lastPDFSettings
}

// LastImage returns the arguments of the last ExportToImage call.
func (f *FakeEngine) LastImage() (string, engine.ImageSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastImagePath, f.lastImageSettings
}

func (f *FakeEngine) count(fn func(*Calls)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.calls)
}

// Init implements engine.Initializer.
func (f *FakeEngine) Init(context.Context) (engine.Runtime, error) {
	f.count(func(c *Calls) { c.Init++ })
	if f.InitErr != nil {
		return nil, f.InitErr
	}
	return f, nil
}

// Version implements engine.Runtime.
func (f *FakeEngine) Version() string { return f.VersionText }

// OpenProject implements engine.Runtime.
func (f *FakeEngine) OpenProject(_ context.Context, path string) (engine.Project, error) {
	f.count(func(c *Calls) { c.OpenProject++ })
	f.mu.Lock()
	f.lastProjectPath = path
	f.mu.Unlock()

	if f.PanicOnOpen != nil {
		panic(f.PanicOnOpen)
	}
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	for _, l := range f.Project.LayoutList {
		l.owner = f
		for _, item := range l.ItemList {
			if m, ok := item.(*FakeMapFrame); ok {
				m.owner = f
			}
		}
	}
	return f.Project, nil
}

// Shutdown implements engine.Runtime.
func (f *FakeEngine) Shutdown() error {
	f.count(func(c *Calls) { c.Shutdown++ })
	return nil
}

// FakeProject is an in-memory engine.Project.
type FakeProject struct {
	TitleText  string
	CRSID      string
	LayoutList []*FakeLayout
}

func (p *FakeProject) Title() string { return p.TitleText }
func (p *FakeProject) CRS() string   { return p.CRSID }

func (p *FakeProject) Layouts() []engine.Layout {
	out := make([]engine.Layout, len(p.LayoutList))
	for i, l := range p.LayoutList {
		out[i] = l
	}
	return out
}

// FakeLayout is an in-memory engine.Layout.
type FakeLayout struct {
	LayoutName string
	ItemList   []engine.Item
	owner      *FakeEngine
}

func (l *FakeLayout) Name() string              { return l.LayoutName }
func (l *FakeLayout) Items() []engine.Item      { return l.ItemList }
func (l *FakeLayout) Exporter() engine.Exporter { return &fakeExporter{owner: l.owner} }

type fakeExporter struct {
	owner *FakeEngine
}

func (e *fakeExporter) ExportToPDF(_ context.Context, path string, s engine.PDFSettings) engine.Result {
	f := e.owner
	f.mu.Lock()
	f.calls.ExportPDF++
	f.lastPDFPath, f.lastPDFSettings = path, s
	f.mu.Unlock()
	if f.PanicOnExport != nil {
		panic(f.PanicOnExport)
	}
	return f.Result
}

func (e *fakeExporter) ExportToImage(_ context.Context, path string, s engine.ImageSettings) engine.Result {
	f := e.owner
	f.mu.Lock()
	f.calls.ExportImage++
	f.lastImagePath, f.lastImageSettings = path, s
	f.mu.Unlock()
	if f.PanicOnExport != nil {
		panic(f.PanicOnExport)
	}
	return f.Result
}

// FakeMapFrame is an in-memory engine.MapFrame.
type FakeMapFrame struct {
	Name  string
	Ext   geo.Rect
	owner *FakeEngine
}

func (m *FakeMapFrame) ID() string       { return m.Name }
func (m *FakeMapFrame) Extent() geo.Rect { return m.Ext }

func (m *FakeMapFrame) SetExtent(r geo.Rect) {
	m.Ext = r
	if m.owner != nil {
		m.owner.count(func(c *Calls) { c.SetExtent++ })
	}
}

func (m *FakeMapFrame) Refresh() {
	if m.owner != nil {
		m.owner.count(func(c *Calls) { c.Refresh++ })
	}
}

// FakeLabel is an in-memory engine.Label.
type FakeLabel struct {
	Name   string
	Format engine.TextFormat
}

func (l *FakeLabel) ID() string                        { return l.Name }
func (l *FakeLabel) TextFormat() engine.TextFormat     { return l.Format }
func (l *FakeLabel) SetTextFormat(f engine.TextFormat) { l.Format = f }

// FakeItem is a layout item with no capabilities.
type FakeItem struct {
	Name string
}

func (i *FakeItem) ID() string { return i.Name }
