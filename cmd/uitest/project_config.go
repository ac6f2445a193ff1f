package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

const projectConfigName = "uitest.toml"

type projectConfig struct {
	Check  checkConfig  `toml:"check"`
	Target targetConfig `toml:"target"`
}

type checkConfig struct {
	Extensions []string `toml:"extensions"`
	Jobs       int      `toml:"jobs"`
	Cache      bool     `toml:"cache"`
	UI         string   `toml:"ui"`
}

type targetConfig struct {
	Host   string `toml:"host"`
	Target string `toml:"target"`
	Bits   uint8  `toml:"bits"`
}

// projectFile is a loaded uitest.toml.
type projectFile struct {
	Path   string
	Root   string
	Config projectConfig
	meta   toml.MetaData
}

// isSet reports whether key was written in the file. A nil file sets nothing.
func (p *projectFile) isSet(key ...string) bool {
	return p != nil && p.meta.IsDefined(key...)
}

func findProjectConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, projectConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectFile finds and loads the nearest uitest.toml above startDir.
// It returns nil without error when there is none.
func loadProjectFile(startDir string) (*projectFile, error) {
	path, ok, err := findProjectConfig(startDir)
	if err != nil || !ok {
		return nil, err
	}
	return loadProjectConfig(path)
}

func loadProjectConfig(path string) (*projectFile, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if _, err := parseUIMode(cfg.Check.UI, "[check].ui"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if meta.IsDefined("target", "bits") && !slices.Contains([]uint8{16, 32, 64}, cfg.Target.Bits) {
		return nil, fmt.Errorf("%s: [target].bits must be 16, 32 or 64, got %d", path, cfg.Target.Bits)
	}
	exts, err := normalizeExtensions(cfg.Check.Extensions)
	if err != nil {
		return nil, fmt.Errorf("%s: [check].extensions: %w", path, err)
	}
	cfg.Check.Extensions = exts

	return &projectFile{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}, nil
}

// normalizeExtensions turns "rs" and ".rs" into ".rs".
func normalizeExtensions(exts []string) ([]string, error) {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			return nil, fmt.Errorf("empty extension")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out, nil
}
