package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/hcl_adapter"
	"github.com/vk/exportmap/internal/mapdoc"
)

// Version identifies this engine in logs.
const Version = "1.0.0"

// ErrShutdown is returned by a Runtime that has been shut down.
var ErrShutdown = errors.New("render runtime is shut down")

// Options configures a Runtime.
type Options struct {
	// FontDirs are scanned for TrueType fonts at initialization.
	FontDirs []string
	// Loader reads project files. Defaults to the HCL loader.
	Loader mapdoc.Loader
	// Now is the clock used for export timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Runtime is an initialized render engine.
type Runtime struct {
	loader mapdoc.Loader
	fonts  *FontRegistry
	now    func() time.Time
	closed bool
}

var _ engine.Runtime = (*Runtime)(nil)

// New returns an Initializer that builds a Runtime from opts.
func New(opts Options) engine.Initializer {
	return engine.InitFunc(func(ctx context.Context) (engine.Runtime, error) {
		return Init(ctx, opts)
	})
}

// Init builds a Runtime, loading fonts from opts.FontDirs.
func Init(ctx context.Context, opts Options) (*Runtime, error) {
	fonts, err := LoadFonts(ctx, opts.FontDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize render engine: %w", err)
	}
	rt := &Runtime{loader: opts.Loader, fonts: fonts, now: opts.Now}
	if rt.loader == nil {
		rt.loader = hcl_adapter.NewLoader()
	}
	if rt.now == nil {
		rt.now = time.Now
	}
	ctxlog.FromContext(ctx).Debug("Render engine initialized.", "version", Version, "font_families", fonts.Families())
	return rt, nil
}

// Version describes the engine and its output backends.
func (r *Runtime) Version() string {
	return "export_map render " + Version + " (pdf: go-pdf/fpdf, raster: x/image/vector)"
}

// OpenProject loads the document at path and every layer it declares.
func (r *Runtime) OpenProject(ctx context.Context, path string) (engine.Project, error) {
	if r.closed {
		return nil, ErrShutdown
	}
	logger := ctxlog.FromContext(ctx)

	doc, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	p := &Project{doc: doc, runtime: r, layers: make(map[string]*Layer, len(doc.Layers))}
	for _, def := range doc.Layers {
		layer, err := loadLayer(def)
		if err != nil {
			return nil, err
		}
		p.layers[def.Name] = layer
		logger.Debug("Loaded layer.", "layer", def.Name, "features", layer.Len(), "crs", def.CRS)
	}
	for _, def := range doc.Layouts {
		p.layouts = append(p.layouts, newLayout(def, p))
	}
	return p, nil
}

// Shutdown releases the runtime. Calling it again is a no-op.
func (r *Runtime) Shutdown() error {
	r.closed = true
	return nil
}
