package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseUIMode(t *testing.T) {
	cases := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"auto", uiModeAuto, false},
		{" ON ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"yes", uiModeAuto, true},
	}
	for _, tc := range cases {
		got, err := parseUIMode(tc.in, "--ui")
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("parseUIMode(%q) = %s, %v", tc.in, got, err)
		}
	}
	if _, err := parseUIMode("yes", "uitest.toml [check].ui"); err == nil || !strings.Contains(err.Error(), "uitest.toml [check].ui") {
		t.Errorf("error must name where the value came from, got %v", err)
	}
}

func TestUseTUI(t *testing.T) {
	var buf bytes.Buffer
	if !useTUI(uiModeOn, &buf) || useTUI(uiModeOff, os.Stdout) {
		t.Errorf("explicit modes must not depend on the output")
	}
	if useTUI(uiModeAuto, &buf) {
		t.Errorf("auto must not draw on a buffer")
	}
}

func TestCheckSettingsUIMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, projectConfigName)
	if err := os.WriteFile(path, []byte("[check]\nui = \"on\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	project, err := loadProjectConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		args    []string
		project *projectFile
		want    uiMode
		wantErr string
	}{
		{"default", nil, nil, uiModeAuto, ""},
		{"file", nil, project, uiModeOn, ""},
		{"flag wins", []string{"--ui", "off"}, project, uiModeOff, ""},
		{"bad flag", []string{"--ui", "maybe"}, project, uiModeAuto, "invalid --ui value \"maybe\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newCheckCmd()
			if err := cmd.ParseFlags(tc.args); err != nil {
				t.Fatal(err)
			}
			s, err := readCheckSettings(cmd, tc.project)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if s.ui != tc.want {
				t.Errorf("expected ui %s, got %s", tc.want, s.ui)
			}
		})
	}
}
