package hcl_adapter

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exportmap/internal/mapdoc"
)

func writeProject(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestLoader_Load(t *testing.T) {
	// --- Arrange ---
	path := writeProject(t, "bay.hcl", `
		project "bay" {
			title = "Bay Area"
			crs   = "EPSG:3857"
		}

		layout "first" {
			page_size   = "A4"
			orientation = "landscape"

			label "title" {
				position  = [10, 5, 200, 12]
				text      = "${project.title} (${layout.name})"
				font_size = 18
				align     = "Center"
			}

			map "main" {
				position = [10, 20, 277, 180]
				extent   = [0, 0, 100, 50]
			}

			shape "border" {
				position = [5, 5, 287, 200]
			}
		}

		layer "coast" {
			source       = "data/coast.geojson"
			stroke_color = "#1f4e79"
			fill_color   = "#cfe2f3"
		}

		layer "hidden" {
			source  = "/abs/hidden.geojson"
			visible = false
		}

		layout "second" {
			width  = 100
			height = 50
		}
	`)

	// --- Act ---
	doc, err := NewLoader().Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, path, doc.Path)
	assert.Equal(t, mapdoc.Project{Name: "bay", Title: "Bay Area", CRS: "EPSG:3857"}, doc.Project)

	wantLayers := []*mapdoc.Layer{
		{
			Name:   "coast",
			Source: filepath.Join(filepath.Dir(path), "data", "coast.geojson"),
			CRS:    "EPSG:4326",
			Style: mapdoc.Style{
				Stroke:      color.NRGBA{0x1f, 0x4e, 0x79, 0xff},
				Fill:        color.NRGBA{0xcf, 0xe2, 0xf3, 0xff},
				StrokeWidth: defaultStrokeWidth,
				PointRadius: defaultPointRadius,
			},
			Visible: true,
		},
		{
			Name:   "hidden",
			Source: "/abs/hidden.geojson",
			CRS:    "EPSG:4326",
			Style: mapdoc.Style{
				Stroke:      color.NRGBA{0, 0, 0, 0xff},
				Fill:        mapdoc.Transparent,
				StrokeWidth: defaultStrokeWidth,
				PointRadius: defaultPointRadius,
			},
			Visible: false,
		},
	}
	if diff := cmp.Diff(wantLayers, doc.Layers); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, doc.Layouts, 2)
	assert.Equal(t, "first", doc.Layouts[0].Name)
	assert.Equal(t, "second", doc.Layouts[1].Name)
	assert.Equal(t, 297.0, doc.Layouts[0].Width)
	assert.Equal(t, 210.0, doc.Layouts[0].Height)
	assert.Equal(t, 100.0, doc.Layouts[1].Width)
	assert.Equal(t, 50.0, doc.Layouts[1].Height)
	assert.Empty(t, doc.Layouts[1].Items)

	extent := [4]float64{0, 0, 100, 50}
	wantItems := []mapdoc.Item{
		&mapdoc.LabelItem{
			Name:       "title",
			Box:        mapdoc.Box{X: 10, Y: 5, W: 200, H: 12},
			FontFamily: defaultFontFamily,
			FontSize:   18,
			Color:      color.NRGBA{0, 0, 0, 0xff},
			Align:      mapdoc.AlignCenter,
		},
		&mapdoc.MapItem{
			Name:       "main",
			Box:        mapdoc.Box{X: 10, Y: 20, W: 277, H: 180},
			Layers:     []string{"coast"},
			Extent:     &extent,
			Background: color.NRGBA{0xff, 0xff, 0xff, 0xff},
			Frame:      true,
		},
		&mapdoc.ShapeItem{
			Name:        "border",
			Box:         mapdoc.Box{X: 5, Y: 5, W: 287, H: 200},
			Stroke:      color.NRGBA{0, 0, 0, 0xff},
			StrokeWidth: defaultStrokeWidth,
		},
	}
	if diff := cmp.Diff(wantItems, doc.Layouts[0].Items, cmpopts.IgnoreFields(mapdoc.LabelItem{}, "Text")); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	label := doc.Layouts[0].Items[0].(*mapdoc.LabelItem)
	text, err := label.Text.Render(mapdoc.TemplateVars{ProjectTitle: "Bay Area", LayoutName: "first"})
	require.NoError(t, err)
	assert.Equal(t, "Bay Area (first)", text)
}

func TestLoader_Load_Defaults(t *testing.T) {
	path := writeProject(t, "plain.hcl", `
		layout "only" {
			label "empty" {
				position = [0, 0, 10, 10]
			}
		}
	`)

	doc, err := NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, mapdoc.Project{Name: "plain", Title: "plain", CRS: "EPSG:4326"}, doc.Project)
	require.Len(t, doc.Layouts, 1)
	assert.Equal(t, 210.0, doc.Layouts[0].Width)
	assert.Equal(t, 297.0, doc.Layouts[0].Height)

	label := doc.Layouts[0].Items[0].(*mapdoc.LabelItem)
	text, err := label.Text.Render(mapdoc.TemplateVars{})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, defaultFontSize, label.FontSize)
}

func TestLoader_Load_JSONSyntax(t *testing.T) {
	path := writeProject(t, "proj.json", `{
		"project": {"j": {"crs": "EPSG:3857"}},
		"layout": {"p": {"page_size": "A5"}}
	}`)

	doc, err := NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "EPSG:3857", doc.Project.CRS)
	require.Len(t, doc.Layouts, 1)
	assert.Equal(t, 148.0, doc.Layouts[0].Width)
}

func TestLoader_Load_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `layout "a" {`,
			wantErr: "failed to parse project file",
		},
		{
			name:    "unknown block",
			src:     `widget "a" {}`,
			wantErr: "failed to decode project file",
		},
		{
			name:    "duplicate project",
			src:     "project \"a\" {}\nproject \"b\" {}",
			wantErr: "only one project block",
		},
		{
			name:    "duplicate layer",
			src:     "layer \"a\" { source = \"x\" }\nlayer \"a\" { source = \"y\" }",
			wantErr: `duplicate layer "a"`,
		},
		{
			name: "unknown layer in map",
			src: `
				layout "l" {
					map "m" {
						position = [0, 0, 1, 1]
						layers   = ["nope"]
					}
				}`,
			wantErr: `unknown layer "nope"`,
		},
		{
			name: "short position",
			src: `
				layout "l" {
					shape "s" {
						position = [0, 0, 1]
					}
				}`,
			wantErr: "need 4 numbers",
		},
		{
			name: "bad color",
			src: `
				layout "l" {
					label "t" {
						position = [0, 0, 1, 1]
						color    = "#12"
					}
				}`,
			wantErr: "invalid color",
		},
		{
			name: "bad alignment",
			src: `
				layout "l" {
					label "t" {
						position = [0, 0, 1, 1]
						align    = "justify"
					}
				}`,
			wantErr: `unknown alignment "justify"`,
		},
		{
			name: "unknown template variable",
			src: `
				layout "l" {
					label "t" {
						position = [0, 0, 1, 1]
						text     = "${project.owner}"
					}
				}`,
			wantErr: "unknown variable project.owner",
		},
		{
			name: "template function call",
			src: `
				layout "l" {
					label "t" {
						position = [0, 0, 1, 1]
						text     = upper(project.title)
					}
				}`,
			wantErr: "functions are not available: upper",
		},
		{
			name:    "bad page size",
			src:     `layout "l" { page_size = "B7" }`,
			wantErr: "unknown page size",
		},
		{
			name: "unknown item",
			src: `
				layout "l" {
					legend "x" {}
				}`,
			wantErr: `layout "l"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeProject(t, "p.hcl", tc.src)

			_, err := NewLoader().Load(context.Background(), path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseColor(t *testing.T) {
	testCases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#1F4E79", color.NRGBA{0x1f, 0x4e, 0x79, 0xff}},
		{"#00000080", color.NRGBA{0, 0, 0, 0x80}},
		{"Grey", color.NRGBA{128, 128, 128, 255}},
		{"none", mapdoc.Transparent},
	}
	for _, tc := range testCases {
		got, err := parseColor(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := parseColor("teal-ish")
	require.Error(t, err)
}

func TestTemplateDeps(t *testing.T) {
	expr, diags := hclsyntax.ParseTemplate([]byte(`${upper(project.title)} ${layout.name} ${project.title} ${lower(map.extent)}`), "t.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())

	refs, funcs := templateDeps(expr)

	var keys []string
	for _, r := range refs {
		keys = append(keys, traversalKey(r))
	}
	assert.Equal(t, []string{"layout.name", "map.extent", "project.title"}, keys)
	assert.Equal(t, []string{"lower", "upper"}, funcs)
}
