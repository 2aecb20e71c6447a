package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	nested := filepath.Join(root, "truetype", "dejavu")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	for _, name := range []string{
		filepath.Join(nested, "DejaVuSans.ttf"),
		filepath.Join(nested, "DejaVuSans-Bold.TTF"),
		filepath.Join(root, "README"),
		filepath.Join(root, "NotoSans.otf"),
	} {
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))
	}

	// --- Act ---
	files, err := FindFilesByExtension([]string{root, filepath.Join(root, "missing"), root}, ".ttf", ".otf")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "NotoSans.otf"),
		filepath.Join(nested, "DejaVuSans-Bold.TTF"),
		filepath.Join(nested, "DejaVuSans.ttf"),
	}, files)
}

func TestFindFilesByExtension_PanicsWithoutExtension(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { _, _ = FindFilesByExtension([]string{t.TempDir()}) })
	require.Panics(t, func() { _, _ = FindFilesByExtension([]string{t.TempDir()}, "") })
}
