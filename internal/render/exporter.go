package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// maxRasterPixels bounds the size of a raster export (1 GiB of RGBA).
const maxRasterPixels = 1 << 28

const defaultDPI = 300

// Exporter writes one layout to PDF or raster files.
type Exporter struct {
	layout *Layout
}

var _ engine.Exporter = (*Exporter)(nil)

func (e *Exporter) templateVars(now time.Time) mapdoc.TemplateVars {
	p := e.layout.project
	vars := mapdoc.TemplateVars{
		ProjectTitle: p.Title(),
		ProjectCRS:   p.CRS(),
		LayoutName:   e.layout.Name(),
		ExportTime:   now.Format(time.RFC3339),
	}
	if frame, ok := engine.FirstMapFrame(e.layout.items); ok {
		vars.MapExtent = geo.FormatRect(frame.Extent())
	}
	return vars
}

// ExportToPDF writes the layout as a single-page vector PDF.
func (e *Exporter) ExportToPDF(ctx context.Context, path string, settings engine.PDFSettings) engine.Result {
	logger := ctxlog.FromContext(ctx).With("layout", e.layout.Name(), "path", path, "format", "pdf")
	if err := ctx.Err(); err != nil {
		return renderFailed(logger, err)
	}

	now := e.layout.project.runtime.now()
	def := e.layout.def

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(settings.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	title := settings.Title
	if title == "" {
		title = e.layout.project.Title()
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator(settings.Creator, true)
	pdf.SetProducer("export_map render "+Version, true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: def.Width, Ht: def.Height})

	p := &painter{layout: e.layout, c: newPDFCanvas(pdf), vars: e.templateVars(now), logger: logger}
	if err := p.paint(ctx); err != nil {
		return renderFailed(logger, err)
	}
	if err := pdf.Error(); err != nil {
		return renderFailed(logger, err)
	}

	if err := writeFile(path, pdf.Output); err != nil {
		logger.Error("❌ Failed to write PDF.", "error", err)
		return engine.FileError
	}
	logger.Debug("PDF written.", "width_mm", def.Width, "height_mm", def.Height)
	return engine.Success
}

// ExportToImage rasterizes the layout at settings.DPI and encodes it in the
// format implied by the file extension (PNG when unrecognized).
func (e *Exporter) ExportToImage(ctx context.Context, path string, settings engine.ImageSettings) engine.Result {
	logger := ctxlog.FromContext(ctx).With("layout", e.layout.Name(), "path", path, "format", "image")
	if err := ctx.Err(); err != nil {
		return renderFailed(logger, err)
	}

	dpi := settings.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	def := e.layout.def
	size := pixelSize(def.Width, def.Height, dpi)
	if size.X <= 0 || size.Y <= 0 {
		logger.Error("❌ Layout has no printable area.", "width_px", size.X, "height_px", size.Y)
		return engine.PrintError
	}
	if int64(size.X)*int64(size.Y) > maxRasterPixels {
		logger.Error("❌ Raster export too large.", "width_px", size.X, "height_px", size.Y, "dpi", dpi)
		return engine.MemoryError
	}

	now := e.layout.project.runtime.now()
	canvas := newRasterCanvas(size, dpi, color.White)
	defer canvas.close()

	p := &painter{layout: e.layout, c: canvas, vars: e.templateVars(now), logger: logger}
	if err := p.paint(ctx); err != nil {
		return renderFailed(logger, err)
	}

	encode := encoderFor(path)
	if err := writeFile(path, func(w io.Writer) error { return encode(w, canvas.img) }); err != nil {
		logger.Error("❌ Failed to write image.", "error", err)
		return engine.FileError
	}
	logger.Debug("Image written.", "width_px", size.X, "height_px", size.Y, "dpi", dpi)
	return engine.Success
}

func renderFailed(logger *slog.Logger, err error) engine.Result {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Export canceled.", "error", err)
		return engine.Canceled
	}
	logger.Error("❌ Layout rendering failed.", "error", err)
	return engine.PrintError
}

type encodeFunc func(io.Writer, image.Image) error

func encoderFor(path string) encodeFunc {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
		}
	case ".gif":
		return func(w io.Writer, m image.Image) error {
			return gif.Encode(w, m, nil)
		}
	case ".tif", ".tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}
	case ".bmp":
		return bmp.Encode
	default:
		return png.Encode
	}
}

// writeFile creates path and fills it with write. A partially written file is
// removed.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
