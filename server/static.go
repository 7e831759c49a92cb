package server

import (
	"os"
	"path"
	"path/filepath"
)

// servable reports whether urlPath names a file under dir, or a directory
// with an index.html.
func servable(dir, urlPath string) bool {
	p := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+urlPath)))
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(p, "index.html"))
		return err == nil
	}
	return true
}
