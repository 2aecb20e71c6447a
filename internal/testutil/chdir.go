package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Chdir changes the working directory to dir for the duration of the test,
// restoring it during cleanup. It mirrors testing.T.Chdir from Go 1.24 and
// must not be used in parallel tests.
func Chdir(t testing.TB, dir string) {
	t.Helper()
	oldwd, err := os.Open(".")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		oldwd.Close()
		t.Fatal(err)
	}
	// Keep PWD in sync with the new directory, as testing.T.Chdir does.
	if !filepath.IsAbs(dir) {
		if abs, err := os.Getwd(); err == nil {
			dir = abs
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		defer oldwd.Close()
		if err := oldwd.Chdir(); err != nil {
			panic("testutil.Chdir: " + err.Error())
		}
	})
}
