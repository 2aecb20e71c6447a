package render

import (
	"context"
	"image/color"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/mapdoc"
)

type textCall struct {
	x, y float64
	s    string
}

// textCanvas records Text calls and ignores everything else.
type textCanvas struct {
	texts []textCall
}

func (c *textCanvas) FillRect(mapdoc.Box, color.NRGBA)                   {}
func (c *textCanvas) StrokeRect(mapdoc.Box, color.NRGBA, float64)        {}
func (c *textCanvas) PushClip(mapdoc.Box)                                {}
func (c *textCanvas) PopClip()                                           {}
func (c *textCanvas) FillPolygon([][]orb.Point, color.NRGBA)             {}
func (c *textCanvas) StrokePath([]orb.Point, bool, color.NRGBA, float64) {}
func (c *textCanvas) FillCircle(orb.Point, float64, color.NRGBA)         {}
func (c *textCanvas) Text(x, y float64, s string, _ *Font, _ float64, _ color.NRGBA) error {
	c.texts = append(c.texts, textCall{x: x, y: y, s: s})
	return nil
}

func TestPainter_LabelAlignment(t *testing.T) {
	rt := newTestRuntime(t)
	font := rt.fonts.Resolve("Go")
	width := font.WidthMM("Bay", 10)
	box := mapdoc.Box{X: 10, Y: 5, W: 80, H: 10}

	testCases := []struct {
		align mapdoc.Alignment
		wantX float64
	}{
		{mapdoc.AlignLeft, 10},
		{mapdoc.AlignCenter, 10 + (80-width)/2},
		{mapdoc.AlignRight, 90 - width},
	}
	for _, tc := range testCases {
		// --- Arrange ---
		label := newLabel(&mapdoc.LabelItem{
			Name:       "title",
			Box:        box,
			Text:       mapdoc.StaticText("Bay"),
			FontFamily: "Go",
			FontSize:   10,
			Align:      tc.align,
		})
		layout := &Layout{project: &Project{runtime: rt}, items: []engine.Item{label}}
		c := &textCanvas{}
		p := &painter{layout: layout, c: c, logger: slog.Default()}

		// --- Act ---
		err := p.paint(context.Background())

		// --- Assert ---
		require.NoError(t, err)
		require.Len(t, c.texts, 1)
		assert.Equal(t, "Bay", c.texts[0].s)
		assert.InDelta(t, tc.wantX, c.texts[0].x, 1e-9)
		assert.InDelta(t, box.Y+font.AscentMM(10), c.texts[0].y, 1e-9)
	}
}

func TestPainter_AlignsEachLine(t *testing.T) {
	// --- Arrange ---
	rt := newTestRuntime(t)
	font := rt.fonts.Resolve("Go")
	label := newLabel(&mapdoc.LabelItem{
		Name:     "notes",
		Box:      mapdoc.Box{W: 100, H: 20},
		Text:     mapdoc.StaticText("a\nmuch longer line"),
		FontSize: 8,
		Align:    mapdoc.AlignRight,
	})
	layout := &Layout{project: &Project{runtime: rt}, items: []engine.Item{label}}
	c := &textCanvas{}
	p := &painter{layout: layout, c: c, logger: slog.Default()}

	// --- Act ---
	err := p.paint(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, c.texts, 2)
	assert.InDelta(t, 100-font.WidthMM("a", 8), c.texts[0].x, 1e-9)
	assert.InDelta(t, 100-font.WidthMM("much longer line", 8), c.texts[1].x, 1e-9)
	assert.Greater(t, c.texts[0].x, c.texts[1].x)
}
