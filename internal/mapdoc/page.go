package mapdoc

import (
	"fmt"
	"strings"
)

// page sizes in millimetres, portrait.
var pageSizes = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// PageSize returns the width and height in millimetres of a named paper size
// in the given orientation ("portrait" or "landscape", case-insensitive).
func PageSize(name, orientation string) (w, h float64, err error) {
	size, ok := pageSizes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, fmt.Errorf("unknown page size %q", name)
	}
	w, h = size[0], size[1]
	switch strings.ToLower(strings.TrimSpace(orientation)) {
	case "", "portrait":
	case "landscape":
		w, h = h, w
	default:
		return 0, 0, fmt.Errorf("unknown orientation %q", orientation)
	}
	return w, h, nil
}

// ParseAlignment accepts "left", "center" (or "centre") and "right" in any
// letter case. The empty string means left.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}
