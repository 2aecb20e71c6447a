package mapdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSize(t *testing.T) {
	w, h, err := PageSize("a4", "Landscape")
	require.NoError(t, err)
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)

	w, h, err = PageSize("Letter", "")
	require.NoError(t, err)
	assert.Equal(t, 215.9, w)
	assert.Equal(t, 279.4, h)

	_, _, err = PageSize("B5", "portrait")
	require.Error(t, err)

	_, _, err = PageSize("A4", "sideways")
	require.Error(t, err)
}

func TestDocumentLayer(t *testing.T) {
	doc := &Document{Layers: []*Layer{{Name: "roads"}, {Name: "coast"}}}

	require.NotNil(t, doc.Layer("coast"))
	assert.Equal(t, "coast", doc.Layer("coast").Name)
	assert.Nil(t, doc.Layer("rivers"))
}

func TestStaticText(t *testing.T) {
	s, err := StaticText("hello").Render(TemplateVars{LayoutName: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestParseAlignment(t *testing.T) {
	testCases := []struct {
		in   string
		want Alignment
	}{
		{"", AlignLeft},
		{"left", AlignLeft},
		{"Center", AlignCenter},
		{"centre", AlignCenter},
		{" RIGHT ", AlignRight},
	}
	for _, tc := range testCases {
		got, err := ParseAlignment(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseAlignment("justify")
	require.Error(t, err)
}
