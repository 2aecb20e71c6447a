package render

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/fsutil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const mmPerPoint = 25.4 / 72

// Font is a parsed TrueType font.
type Font struct {
	Family    string
	Subfamily string
	// Data is the raw font file, embedded into PDF output.
	Data []byte

	parsed *opentype.Font
}

func parseFont(data []byte) (*Font, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	var buf sfnt.Buffer
	family, err := parsed.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return nil, fmt.Errorf("font has no family name: %w", err)
	}
	subfamily, _ := parsed.Name(&buf, sfnt.NameIDSubfamily)
	return &Font{Family: family, Subfamily: subfamily, Data: data, parsed: parsed}, nil
}

// Face returns a face at sizePt points for an output resolution of dpi.
func (f *Font) Face(sizePt, dpi float64) (font.Face, error) {
	return opentype.NewFace(f.parsed, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
}

// AscentMM is the distance from the top of a line to its baseline.
func (f *Font) AscentMM(sizePt float64) float64 {
	face, err := f.Face(sizePt, 72)
	if err != nil {
		return sizePt * 0.8 * mmPerPoint
	}
	defer face.Close()
	return fixedToFloat(face.Metrics().Ascent) * mmPerPoint
}

// WidthMM is the advance width of s.
func (f *Font) WidthMM(s string, sizePt float64) float64 {
	face, err := f.Face(sizePt, 72)
	if err != nil {
		return 0
	}
	defer face.Close()
	return fixedToFloat(font.MeasureString(face, s)) * mmPerPoint
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func isRegular(subfamily string) bool {
	switch strings.ToLower(subfamily) {
	case "regular", "book", "roman", "normal":
		return true
	}
	return false
}

// FontRegistry maps family names to fonts discovered on disk.
type FontRegistry struct {
	families map[string]*Font
	fallback *Font
}

// LoadFonts scans dirs for TrueType files and indexes them by family name.
// Regular faces win over other styles of the same family. Files that fail to
// parse are skipped.
func LoadFonts(ctx context.Context, dirs []string) (*FontRegistry, error) {
	logger := ctxlog.FromContext(ctx)

	fallback, err := parseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in font: %w", err)
	}
	r := &FontRegistry{families: make(map[string]*Font), fallback: fallback}
	r.add(fallback)

	files, err := fsutil.FindFilesByExtension(dirs, ".ttf")
	if err != nil {
		return nil, fmt.Errorf("failed to scan font directories: %w", err)
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Debug("Skipping unreadable font file.", "path", file, "error", err)
			continue
		}
		f, err := parseFont(data)
		if err != nil {
			logger.Debug("Skipping unparsable font file.", "path", file, "error", err)
			continue
		}
		r.add(f)
	}

	logger.Debug("Font discovery finished.", "files", len(files), "families", len(r.families))
	return r, nil
}

func (r *FontRegistry) add(f *Font) {
	key := strings.ToLower(f.Family)
	if existing, ok := r.families[key]; ok && (isRegular(existing.Subfamily) || !isRegular(f.Subfamily)) {
		return
	}
	r.families[key] = f
}

// Lookup finds a family by name, case-insensitively.
func (r *FontRegistry) Lookup(family string) (*Font, bool) {
	f, ok := r.families[strings.ToLower(strings.TrimSpace(family))]
	return f, ok
}

// Resolve returns the named family, or the built-in Go Regular font when the
// family is not installed.
func (r *FontRegistry) Resolve(family string) *Font {
	if f, ok := r.Lookup(family); ok {
		return f
	}
	return r.fallback
}

// Families lists the registered family names, sorted.
func (r *FontRegistry) Families() []string {
	names := make([]string, 0, len(r.families))
	for _, f := range r.families {
		names = append(names, f.Family)
	}
	sort.Strings(names)
	return names
}
