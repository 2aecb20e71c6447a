package job

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/geo"
)

// ImageDPI is the resolution of IMAGE exports.
const ImageDPI = 300

// DefaultFontFamily is the family every label is switched to unless Options
// names another one.
const DefaultFontFamily = "DejaVu Sans"

// Request describes one export.
type Request struct {
	ProjectPath string
	OutputPath  string
	Format      Format
	// Extent is the requested area in WGS84 longitude/latitude.
	Extent geo.Rect
}

// Options tune the pipeline.
type Options struct {
	FontFamily string
	// Now is used to time stages. Defaults to time.Now.
	Now func() time.Time
}

// Report describes what a run did. Fields are filled in as stages complete,
// so a report returned alongside an error shows how far the run got.
type Report struct {
	EngineVersion string
	ProjectTitle  string
	ProjectCRS    string
	Layout        string
	// Extent is the requested extent in the project CRS.
	Extent           geo.Rect
	MapFrameUpdated  bool
	LabelsNormalized int
	Exported         bool
	Result           engine.Result
	// Stage is the stage running when the run returned or panicked.
	Stage     string
	Durations map[string]time.Duration
}

// Succeeded reports whether the export ran and returned engine.Success.
func (r *Report) Succeeded() bool {
	return r != nil && r.Exported && r.Result == engine.Success
}

type runner struct {
	rt     engine.Runtime
	req    Request
	opts   Options
	report *Report
}

// Run executes the pipeline against an initialized runtime. The returned
// report is never nil. A non-success export result is reported, not
// returned as an error. A panic raised by the engine is recovered and
// returned as a *PanicError naming the running stage.
func Run(ctx context.Context, rt engine.Runtime, req Request, opts Options) (report *Report, err error) {
	if opts.FontFamily == "" {
		opts.FontFamily = DefaultFontFamily
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &runner{
		rt:     rt,
		req:    req,
		opts:   opts,
		report: &Report{Durations: make(map[string]time.Duration)},
	}
	defer func() {
		if v := recover(); v != nil {
			report = r.report
			err = &PanicError{Stage: r.report.Stage, Value: v, Stack: debug.Stack()}
		}
	}()

	r.report.EngineVersion = rt.Version()
	return r.report, r.run(ctx)
}

// run executes the stages in order; the first error stops it.
func (r *runner) run(ctx context.Context) error {
	var (
		project engine.Project
		layout  engine.Layout
		extent  geo.Rect
	)

	if err := r.stage(StageOpen, func() (err error) {
		project, err = r.open(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := r.stage(StageLayout, func() (err error) {
		layout, err = r.firstLayout(ctx, project)
		return err
	}); err != nil {
		return err
	}
	if err := r.stage(StageTransform, func() (err error) {
		extent, err = r.transform(ctx, project)
		return err
	}); err != nil {
		return err
	}
	_ = r.stage(StageMapFrame, func() error {
		r.applyExtent(ctx, layout, extent)
		return nil
	})
	_ = r.stage(StageLabels, func() error {
		r.normalizeLabels(ctx, layout)
		return nil
	})
	return r.stage(StageExport, func() error {
		return r.export(ctx, layout)
	})
}

func (r *runner) stage(name string, fn func() error) error {
	r.report.Stage = name
	start := r.opts.Now()
	err := fn()
	r.report.Durations[name] = r.opts.Now().Sub(start)
	return err
}

func (r *runner) open(ctx context.Context) (engine.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Opening project.", "path", r.req.ProjectPath)

	project, err := r.rt.OpenProject(ctx, r.req.ProjectPath)
	if err != nil {
		return nil, &ProjectError{Path: r.req.ProjectPath, Err: err}
	}
	r.report.ProjectTitle = project.Title()
	r.report.ProjectCRS = project.CRS()
	logger.Info("📂 Project opened.", "title", project.Title(), "crs", project.CRS())
	return project, nil
}

func (r *runner) firstLayout(ctx context.Context, project engine.Project) (engine.Layout, error) {
	layouts := project.Layouts()
	if len(layouts) == 0 {
		return nil, ErrNoLayout
	}
	layout := layouts[0]
	r.report.Layout = layout.Name()
	ctxlog.FromContext(ctx).Debug("Layout selected.", "name", layout.Name(), "layouts", len(layouts))
	return layout, nil
}

func (r *runner) transform(ctx context.Context, project engine.Project) (geo.Rect, error) {
	dst, err := geo.Lookup(project.CRS())
	if err != nil {
		return geo.Rect{}, &StageError{Stage: StageTransform, Err: err}
	}
	t, err := geo.NewTransform(geo.WGS84, dst)
	if err != nil {
		return geo.Rect{}, &StageError{Stage: StageTransform, Err: err}
	}
	extent, err := t.TransformBoundingBox(r.req.Extent)
	if err != nil {
		return geo.Rect{}, &StageError{
			Stage: StageTransform,
			Err:   fmt.Errorf("transform %s to %s: %w", geo.FormatRect(r.req.Extent), dst.ID, err),
		}
	}
	r.report.Extent = extent
	ctxlog.FromContext(ctx).Info("📐 Transformed extent: "+geo.FormatRect(extent), "crs", dst.ID)
	return extent, nil
}

func (r *runner) applyExtent(ctx context.Context, layout engine.Layout, extent geo.Rect) {
	logger := ctxlog.FromContext(ctx)
	frame, ok := engine.FirstMapFrame(layout.Items())
	if !ok {
		logger.Warn("⚠️ No map item found in the layout.", "layout", layout.Name())
		return
	}
	frame.SetExtent(extent)
	frame.Refresh()
	r.report.MapFrameUpdated = true
	logger.Info("🌀 Layout refreshed and ready for export.", "map", frame.ID())
}

func (r *runner) normalizeLabels(ctx context.Context, layout engine.Layout) {
	logger := ctxlog.FromContext(ctx)
	for _, label := range engine.Labels(layout.Items()) {
		format := label.TextFormat()
		logger.Debug("Normalizing label font.", "label", label.ID(), "from", format.Family, "size", format.PointSize)
		label.SetTextFormat(engine.TextFormat{Family: r.opts.FontFamily, PointSize: format.PointSize})
		r.report.LabelsNormalized++
	}
	logger.Info("🔤 Labels updated.", "count", r.report.LabelsNormalized, "family", r.opts.FontFamily)
}

func (r *runner) export(ctx context.Context, layout engine.Layout) error {
	logger := ctxlog.FromContext(ctx)
	exporter := layout.Exporter()

	var result engine.Result
	switch format := r.req.Format.normalize(); format {
	case PDF:
		settings := engine.DefaultPDFSettings()
		settings.Title = r.report.ProjectTitle
		result = exporter.ExportToPDF(ctx, r.req.OutputPath, settings)
	case Image:
		result = exporter.ExportToImage(ctx, r.req.OutputPath, engine.ImageSettings{DPI: ImageDPI})
	default:
		logger.Error("❌ Unsupported format: " + string(format))
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(r.req.Format))
	}

	r.report.Exported = true
	r.report.Result = result
	if result == engine.Success {
		logger.Info("✅ Export successful: "+r.req.OutputPath, "format", r.req.Format.normalize())
	} else {
		logger.Error(fmt.Sprintf("❌ Export failed with result code: %d", int(result)), "result", result.String())
	}
	return nil
}
