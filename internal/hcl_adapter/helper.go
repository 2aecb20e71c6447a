package hcl_adapter

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/mapdoc"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted hcl.Expression fields with a
// zero-width placeholder, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file; the placeholder for an
	// omitted one starts and ends on the same byte.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

var namedColors = map[string]color.NRGBA{
	"black": {0, 0, 0, 255},
	"white": {255, 255, 255, 255},
	"red":   {255, 0, 0, 255},
	"green": {0, 128, 0, 255},
	"blue":  {0, 0, 255, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
}

// parseColor accepts "#rgb", "#rrggbb", "#rrggbbaa", a handful of names, and
// "none" or "transparent".
func parseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "none", "transparent":
		return mapdoc.Transparent, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// parseBox reads [x, y, width, height] in millimetres.
func parseBox(v []float64) (mapdoc.Box, error) {
	if len(v) != 4 {
		return mapdoc.Box{}, fmt.Errorf("need 4 numbers [x, y, width, height], got %d", len(v))
	}
	if v[2] <= 0 || v[3] <= 0 {
		return mapdoc.Box{}, fmt.Errorf("width and height must be positive, got %gx%g", v[2], v[3])
	}
	return mapdoc.Box{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
