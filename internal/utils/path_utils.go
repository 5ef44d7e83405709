package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/funvibe/anonsum/internal/config"
)

// ExpandSources replaces every directory argument with the source files
// found beneath it, sorted by path. File arguments are kept as given,
// whatever their extension. Hidden directories are skipped.
func ExpandSources(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported when they are read.
			out = append(out, arg)
			continue
		}
		found, err := sourcesUnder(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s: no %s files", arg, config.SourceFileExt)
		}
		out = append(out, found...)
	}
	return out, nil
}

func sourcesUnder(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if config.HasSourceExt(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}
