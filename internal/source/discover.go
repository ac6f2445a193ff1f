package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the test file extensions used when none are configured.
var DefaultExtensions = []string{".rs"}

// Discover expands roots into a sorted, duplicate-free list of test files.
// Directories are walked recursively and only files with one of exts are
// kept; hidden directories are skipped. Files named explicitly are kept
// whatever their extension.
func Discover(roots, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, normalizePath(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if slices.Contains(exts, filepath.Ext(path)) {
				files = append(files, normalizePath(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	// deterministic order regardless of argument order
	slices.Sort(files)
	return slices.Compact(files), nil
}
