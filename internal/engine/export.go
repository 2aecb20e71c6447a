package engine

import "fmt"

// Result is the outcome of an export.
type Result int

const (
	Success Result = iota
	Canceled
	MemoryError
	FileError
	PrintError
	SvgLayerError
	IteratorError
)

var resultNames = [...]string{
	Success:       "success",
	Canceled:      "canceled",
	MemoryError:   "memory error",
	FileError:     "file error",
	PrintError:    "print error",
	SvgLayerError: "svg layer error",
	IteratorError: "iterator error",
}

func (r Result) String() string {
	if r >= 0 && int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// PDFSettings controls PDF export.
type PDFSettings struct {
	// DPI is used for any rasterized content.
	DPI      float64
	Compress bool
	Title    string
	Creator  string
}

// DefaultPDFSettings returns the settings used when the caller has no
// preferences.
func DefaultPDFSettings() PDFSettings {
	return PDFSettings{
		DPI:      300,
		Compress: true,
		Creator:  "export_map",
	}
}

// ImageSettings controls raster export.
type ImageSettings struct {
	DPI float64
}
