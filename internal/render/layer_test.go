package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
)

func loadTestLayer(t *testing.T) *Layer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shapes.geojson")
	require.NoError(t, os.WriteFile(path, []byte(squareGeoJSON), 0600))
	layer, err := loadLayer(&mapdoc.Layer{Name: "shapes", Source: path, CRS: "EPSG:4326"})
	require.NoError(t, err)
	return layer
}

func TestLayer_Query(t *testing.T) {
	layer := loadTestLayer(t)

	// --- Act ---
	hits, err := layer.Query(geo.NewRect(-15, -1, -12, 1), geo.WGS84)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.IsType(t, orb.LineString{}, hits[0])

	all, err := layer.Query(geo.NewRect(-180, -90, 180, 90), geo.WGS84)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.IsType(t, orb.Polygon{}, all[0])
	assert.IsType(t, orb.LineString{}, all[1])
	assert.Equal(t, orb.Point{100, 50}, all[2])
}

func TestLayer_QueryReprojects(t *testing.T) {
	layer := loadTestLayer(t)
	tr, err := geo.NewTransform(geo.WGS84, geo.WebMercator)
	require.NoError(t, err)
	ext, err := tr.TransformBoundingBox(geo.NewRect(95, 45, 105, 55))
	require.NoError(t, err)

	hits, err := layer.Query(ext, geo.WebMercator)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	pt, ok := hits[0].(orb.Point)
	require.True(t, ok)
	want, err := tr.Point(orb.Point{100, 50})
	require.NoError(t, err)
	assert.InDelta(t, want[0], pt[0], 1e-6)
	assert.InDelta(t, want[1], pt[1], 1e-6)
}

func TestLayer_QueryReturnsCopies(t *testing.T) {
	layer := loadTestLayer(t)

	hits, err := layer.Query(geo.NewRect(-15, -1, -12, 1), geo.WGS84)
	require.NoError(t, err)
	hits[0].(orb.LineString)[0] = orb.Point{0, 0}

	again, err := layer.Query(geo.NewRect(-15, -1, -12, 1), geo.WGS84)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-20, 0}, again[0].(orb.LineString)[0])
}

func TestLayer_Extent(t *testing.T) {
	layer := loadTestLayer(t)

	ext, ok, err := layer.Extent(geo.WGS84)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, geo.Rect{Min: orb.Point{-20, -10}, Max: orb.Point{100, 50}}, ext)
}

func TestLoadLayer_InvalidGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "FeatureCollection", "features": [`), 0600))

	_, err := loadLayer(&mapdoc.Layer{Name: "bad", Source: path, CRS: "EPSG:4326"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode GeoJSON")
}
