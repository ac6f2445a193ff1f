package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindProjectConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "tests", "ui", "deep")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, projectConfigName), []byte("[check]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	path, ok, err := findProjectConfig(nested)
	if err != nil || !ok {
		t.Fatalf("findProjectConfig: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, projectConfigName) {
		t.Errorf("unexpected path %s", path)
	}

	project, err := loadProjectFile(nested)
	if err != nil {
		t.Fatal(err)
	}
	if project.Root != root {
		t.Errorf("expected root %s, got %s", root, project.Root)
	}
	if !project.isSet("check") || project.isSet("check", "jobs") {
		t.Errorf("isSet must follow the file contents")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), projectConfigName)
	data := `# test project
[check]
extensions = ["rs", ".fixed"]
jobs = 4
cache = true
ui = "off"

[target]
host = "x86_64-unknown-linux-gnu"
target = "wasm32-unknown-unknown"
bits = 32
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write uitest.toml: %v", err)
	}
	project, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("loadProjectConfig: %v", err)
	}
	want := projectConfig{
		Check: checkConfig{Extensions: []string{".rs", ".fixed"}, Jobs: 4, Cache: true, UI: "off"},
		Target: targetConfig{
			Host:   "x86_64-unknown-linux-gnu",
			Target: "wasm32-unknown-unknown",
			Bits:   32,
		},
	}
	if diff := cmp.Diff(want, project.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProjectConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "[check\n", "failed to parse TOML"},
		{"unknown key", "[check]\nthreads = 2\n", "unknown keys: check.threads"},
		{"negative jobs", "[check]\njobs = -1\n", "[check].jobs must not be negative"},
		{"bits", "[target]\nbits = 48\n", "[target].bits must be 16, 32 or 64"},
		{"ui", "[check]\nui = \"sometimes\"\n", "invalid [check].ui value \"sometimes\""},
		{"empty extension", "[check]\nextensions = [\"\"]\n", "empty extension"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), projectConfigName)
			if err := os.WriteFile(path, []byte(tc.data), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := loadProjectConfig(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestNilProjectFile(t *testing.T) {
	var project *projectFile
	if project.isSet("check") {
		t.Errorf("a missing file sets nothing")
	}
}
