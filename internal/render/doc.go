// Package render is the map rendering engine behind the engine interfaces.
//
// A Runtime loads project documents through a mapdoc.Loader, reads GeoJSON
// layers into per-layer R-trees, and exports layouts either as vector PDF
// (github.com/go-pdf/fpdf) or as raster images drawn with
// golang.org/x/image/vector. Both outputs share one painter so a layout
// looks the same in either format.
//
// Page geometry is in millimetres with the origin at the top-left corner.
package render
