// Package job runs one export: open a project, pick its first layout, move
// the first map frame to a WGS84 extent reprojected into the project CRS,
// normalize label fonts and write the layout to a file.
//
// The pipeline only talks to the engine through the interfaces in
// internal/engine, so it runs unchanged against the real renderer and
// against the fake used in tests.
package job
