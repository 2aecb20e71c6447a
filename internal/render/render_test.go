package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const squareGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "square"},
     "geometry": {"type": "Polygon", "coordinates": [[[-10, -10], [10, -10], [10, 10], [-10, 10], [-10, -10]]]}},
    {"type": "Feature", "properties": {"name": "road"},
     "geometry": {"type": "LineString", "coordinates": [[-20, 0], [20, 0]]}},
    {"type": "Feature", "properties": {"name": "far"},
     "geometry": {"type": "Point", "coordinates": [100, 50]}},
    {"type": "Feature", "properties": {"name": "nothing"}, "geometry": null}
  ]
}`

const testProjectHCL = `
project "test" {
  title = "Test Map"
  crs   = "EPSG:4326"
}

layer "shapes" {
  source       = "shapes.geojson"
  stroke_color = "#000000"
  fill_color   = "#ff0000"
}

layout "small" {
  width  = 50
  height = 20

  label "title" {
    position    = [1, 1, 48, 6]
    text        = "${project.title}: ${map.extent}"
    font_family = "Arial"
    font_size   = 8
  }

  map "main" {
    position = [0, 0, 50, 20]
    extent   = [-5, -2, 5, 2]
    frame    = false
  }

  shape "border" {
    position = [0, 0, 50, 20]
  }
}

layout "second" {
  page_size = "A5"
}
`

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// writeFixture writes the test project and its layer to a temp dir and
// returns the project path.
func writeFixture(t *testing.T, project string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shapes.geojson"), []byte(squareGeoJSON), 0600))
	path := filepath.Join(dir, "project.hcl")
	require.NoError(t, os.WriteFile(path, []byte(project), 0600))
	return path
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := Init(context.Background(), Options{Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Shutdown() })
	return rt
}

func openFixture(t *testing.T) *Project {
	t.Helper()
	rt := newTestRuntime(t)
	p, err := rt.OpenProject(context.Background(), writeFixture(t, testProjectHCL))
	require.NoError(t, err)
	return p.(*Project)
}
