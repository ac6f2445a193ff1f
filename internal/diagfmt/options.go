package diagfmt

import (
	"fmt"

	"uitest/internal/diag"
	"uitest/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode converts a flag value to PathMode.
func ParsePathMode(s string) (PathMode, error) {
	switch s {
	case "", "auto":
		return PathModeAuto, nil
	case "absolute":
		return PathModeAbsolute, nil
	case "relative":
		return PathModeRelative, nil
	case "basename":
		return PathModeBasename, nil
	}
	return PathModeAuto, fmt.Errorf("invalid path mode %q (expected: auto|absolute|relative|basename)", s)
}

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// ShowSource prints the offending line under each diagnostic.
	ShowSource bool
	PathMode   PathMode
	// BaseDir is used by PathModeRelative.
	BaseDir string
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // truncates output per file, not the Bag
}

// FileReport is what the formatters print for one test file.
type FileReport struct {
	Path string
	// File is nil when the file could not be loaded.
	File   *source.File
	Items  []diag.Diagnostic
	Cached bool
}

func (r FileReport) displayPath(mode PathMode, baseDir string) string {
	if r.File == nil {
		return r.Path
	}
	return r.File.FormatPath(mode.String(), baseDir)
}
