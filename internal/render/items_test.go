package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
)

var mapItemNoExtent = mapdoc.MapItem{
	Name:   "m",
	Box:    mapdoc.Box{X: 0, Y: 0, W: 100, H: 50},
	Layers: []string{"shapes"},
}

func TestVisibleExtent(t *testing.T) {
	testCases := []struct {
		name string
		ext  geo.Rect
		box  mapdoc.Box
		want geo.Rect
	}{
		{
			name: "wider box grows width",
			ext:  geo.NewRect(0, 0, 10, 10),
			box:  mapdoc.Box{W: 200, H: 100},
			want: geo.NewRect(-5, 0, 15, 10),
		},
		{
			name: "taller box grows height",
			ext:  geo.NewRect(0, 0, 10, 10),
			box:  mapdoc.Box{W: 50, H: 100},
			want: geo.NewRect(0, -5, 10, 15),
		},
		{
			name: "matching aspect unchanged",
			ext:  geo.NewRect(-4, -1, 4, 1),
			box:  mapdoc.Box{W: 40, H: 10},
			want: geo.NewRect(-4, -1, 4, 1),
		},
		{
			name: "point extent widened",
			ext:  geo.NewRect(3, 3, 3, 3),
			box:  mapdoc.Box{W: 10, H: 10},
			want: geo.NewRect(2.5, 2.5, 3.5, 3.5),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := visibleExtent(tc.ext, tc.box)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("visible extent mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFrameTransform_Page(t *testing.T) {
	xf := newFrameTransform(geo.NewRect(0, 0, 10, 5), mapdoc.Box{X: 10, Y: 20, W: 100, H: 50})

	assert.Equal(t, orb.Point{10, 70}, xf.page(orb.Point{0, 0}))
	assert.Equal(t, orb.Point{110, 20}, xf.page(orb.Point{10, 5}))
	assert.InDelta(t, 0.1, xf.mapUnits(1), 1e-12)
}

func TestMapFrame_RefreshDropsCache(t *testing.T) {
	p := openFixture(t)
	m := newMapFrame(&mapItemNoExtent, p)
	layer, ok := p.Layer("shapes")
	require.True(t, ok)

	geoms, err := m.features(layer, geo.NewRect(-1, -1, 1, 1), geo.WGS84)
	require.NoError(t, err)
	require.Len(t, geoms, 2)
	require.NotNil(t, m.cached)

	m.Refresh()

	assert.Nil(t, m.cached)
}

func TestLabel_TextFormat(t *testing.T) {
	l := newLabel(&mapdoc.LabelItem{Name: "t", FontFamily: "Arial", FontSize: 12})

	l.SetTextFormat(l.TextFormat())
	f := l.TextFormat()
	f.Family = "DejaVu Sans"
	l.SetTextFormat(f)

	assert.Equal(t, "DejaVu Sans", l.TextFormat().Family)
	assert.Equal(t, 12.0, l.TextFormat().PointSize)
}
