package job

import (
	"fmt"
	"strings"
)

// Format selects the export path.
type Format string

const (
	// PDF exports the first layout as a PDF document.
	PDF Format = "PDF"
	// Image exports the first layout as a raster image.
	Image Format = "IMAGE"
)

// ParseFormat accepts a format tag in any letter case.
func ParseFormat(tag string) (Format, error) {
	switch f := Format(strings.ToUpper(tag)); f {
	case PDF, Image:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

func (f Format) normalize() Format {
	return Format(strings.ToUpper(string(f)))
}
