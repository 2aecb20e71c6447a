// Package engine defines the capabilities the export pipeline needs from a
// map rendering engine: a runtime that is initialized once and shut down
// once, projects with print layouts, layout items that may be map frames or
// labels, and an exporter that writes a layout to PDF or a raster image.
//
// The pipeline depends only on these interfaces. The render package provides
// the concrete engine.
package engine
