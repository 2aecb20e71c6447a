package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/exportmap/internal/app"
	"github.com/vk/exportmap/internal/cli"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/testutil"
)

const bayGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[-122.45, 37.75], [-122.35, 37.75], [-122.35, 37.85], [-122.45, 37.85], [-122.45, 37.75]]]}}
  ]
}`

const bayProjectHCL = `
project "bay" {
  title = "Bay Area"
  crs   = "EPSG:3857"
}

layer "bay" {
  source     = "bay.geojson"
  fill_color = "#cfe2f3"
}

layout "Layout 1" {
  width  = 50
  height = 20

  map "main" {
    position = [0, 0, 50, 20]
  }

  label "title" {
    position    = [1, 1, 48, 6]
    text        = "${project.title}"
    font_family = "Arial"
    font_size   = 8
  }
}
`

// isolate keeps settings and font discovery inside the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.Chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXPORTMAP_FONT_DIRS", t.TempDir())
	return dir
}

func writeProject(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bay.geojson"), []byte(bayGeoJSON), 0o600))
	path := filepath.Join(dir, "bay.hcl")
	require.NoError(t, os.WriteFile(path, []byte(bayProjectHCL), 0o600))
	return path
}

func fakeFactory(fake *testutil.FakeEngine) func(*app.Config) engine.Initializer {
	return func(*app.Config) engine.Initializer { return fake }
}

func TestRun_UsageErrorsTouchNoEngine(t *testing.T) {
	isolate(t)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "six arguments", args: []string{"p.hcl", "o.pdf", "PDF", "1", "2", "3"}},
		{name: "eight arguments", args: []string{"p.hcl", "o.pdf", "PDF", "1", "2", "3", "4", "5"}},
		{name: "bad float", args: []string{"p.hcl", "o.pdf", "PDF", "abc", "2", "3", "4"}},
		{name: "unsupported format", args: []string{"p.hcl", "o.png", "png", "1", "2", "3", "4"}},
		{name: "empty format", args: []string{"p.hcl", "o.png", "", "1", "2", "3", "4"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			fake := testutil.NewFakeEngine()
			var out bytes.Buffer

			// --- Act ---
			err := runWith(&out, tc.args, fakeFactory(fake))

			// --- Assert ---
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 1, exitErr.Code)
			assert.Zero(t, fake.Calls().Engine())
		})
	}
}

func TestRun_PipelineFailureExitsZero(t *testing.T) {
	isolate(t)

	// --- Arrange ---
	fake := testutil.NewFakeEngine()
	fake.Project.LayoutList = nil
	var out bytes.Buffer

	// --- Act ---
	err := runWith(&out, []string{"p.hcl", "o.pdf", "pdf", "1", "2", "3", "4"}, fakeFactory(fake))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls().Shutdown)
	assert.Contains(t, out.String(), "no layout found")
}

func TestRun_ExportsPDF(t *testing.T) {
	dir := isolate(t)

	// --- Arrange ---
	project := writeProject(t, dir)
	output := filepath.Join(dir, "bay.pdf")
	var out bytes.Buffer

	// --- Act ---
	err := run(&out, []string{project, output, "Pdf", "-122.5", "37.7", "-122.3", "37.9"})

	// --- Assert ---
	require.NoError(t, err)
	raw, err := os.ReadFile(output)
	require.NoError(t, err, out.String())
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	assert.Contains(t, out.String(), "-13636637.622176")
	assert.Contains(t, out.String(), "✅ Export successful")
}

func TestRun_ExportsImage(t *testing.T) {
	dir := isolate(t)

	// --- Arrange ---
	project := writeProject(t, dir)
	output := filepath.Join(dir, "bay.png")
	var out bytes.Buffer

	// --- Act ---
	err := run(&out, []string{"-log-format", "json", project, output, "IMAGE", "-122.5", "37.7", "-122.3", "37.9"})

	// --- Assert ---
	require.NoError(t, err)
	f, err := os.Open(output)
	require.NoError(t, err, out.String())
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 591, img.Bounds().Dx())
	assert.Equal(t, 236, img.Bounds().Dy())
	assert.True(t, strings.HasPrefix(out.String(), "{"), "json logs")
}

func TestRun_MissingProjectExitsZero(t *testing.T) {
	dir := isolate(t)

	// --- Arrange ---
	var out bytes.Buffer

	// --- Act ---
	err := run(&out, []string{filepath.Join(dir, "missing.hcl"), filepath.Join(dir, "x.pdf"), "PDF", "0", "0", "1", "1"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "failed to read project file")
	assert.Contains(t, out.String(), "👋 Engine exited")
	assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))
}
