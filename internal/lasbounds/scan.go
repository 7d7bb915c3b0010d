package lasbounds

import (
	"path/filepath"
	"strings"

	"github.com/banshee-data/las-bounds/internal/fsutil"
)

// DefaultExt is the point-cloud file extension scanned for.
const DefaultExt = "las"

// ListLAS returns the files directly inside dir whose extension is ext
// (without the dot, compared case-sensitively), in directory listing order.
// Entries that cannot be stat'ed are skipped; so are directories and names
// with no stem. Only a failure to list dir itself is returned.
func ListLAS(fsys fsutil.FileSystem, dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}
	suffix := "." + strings.TrimPrefix(ext, ".")

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, ioErr("scan", dir, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != suffix || name == suffix {
			continue
		}
		p := filepath.Join(dir, name)
		info, err := fsys.Stat(p)
		if err != nil {
			Diagf("scan: skipping unreadable entry %s: %v", p, err)
			continue
		}
		if info.IsDir() {
			continue
		}
		paths = append(paths, p)
	}

	Diagf("scan: %d of %d entries in %s match *%s", len(paths), len(entries), dir, suffix)
	return paths, nil
}
