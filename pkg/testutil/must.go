package testutil

import (
	"os"
	"path/filepath"
)

// Must panics if err is not nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// MustPipe wraps os.Pipe. Both ends are closed when the test finishes.
func MustPipe(c Cleanuper) (r, w *os.File) {
	r, w, err := os.Pipe()
	Must(err)
	c.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

// TempFile returns the path of a not yet existing file named name inside a
// temporary directory that is removed when the test finishes.
func TempFile(c Cleanuper, name string) string {
	dir, err := os.MkdirTemp("", "rawkey-test-")
	Must(err)
	c.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, name)
}
