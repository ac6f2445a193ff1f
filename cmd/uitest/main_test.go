package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(newRootCmd(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

func TestCheckPasses(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{
		"ui/ok.rs":      "//@ check-pass\nfn main() {}\n",
		"ui/sub/two.rs": "//@ revisions: a b\n//@[a] edition: 2021\nfn main() {} //~ ERROR: mismatched\n",
		"ui/notes.txt":  "//@ edition: 2018\n//@ edition: 2018\n",
	}))

	stdout, stderr, err := runCLI(t, "check", "--ui", "off", "ui")
	if err != nil {
		t.Fatalf("check failed: %v\n%s%s", err, stdout, stderr)
	}
	if want := "ok: 2 files checked (0 cached), 0 failed, 0 errors, 0 warnings\n"; stdout != want {
		t.Errorf("unexpected output:\n got %q\nwant %q", stdout, want)
	}
}

func TestCheckReportsFailures(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{
		"bad.rs": "//@ edition: 2018\n//@ edition: 2021\n",
		"ok.rs":  "fn main() {}\n",
	}))

	stdout, stderr, err := runCLI(t, "check", "--ui", "off", "--show-source")
	if code := exitCode(err); code != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if stderr != "" {
		t.Errorf("a failed check must not print an error message, got %q", stderr)
	}
	for _, want := range []string{
		"bad.rs:2: ERROR REV3001: cannot specify `edition` twice\n",
		"   2 | //@ edition: 2021\n",
		"FAILED: 2 files checked (0 cached), 1 failed, 1 errors, 0 warnings\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestCheckJSON(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{
		"a.rs": "//@[x] check-pass\n",
	}))

	stdout, _, err := runCLI(t, "check", "--format", "json", "a.rs")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	var out struct {
		Files []struct {
			Path        string `json:"path"`
			Diagnostics []struct {
				Code string `json:"code"`
				Line int    `json:"line"`
			} `json:"diagnostics"`
		} `json:"files"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(out.Files) != 1 || out.Files[0].Path != "a.rs" {
		t.Fatalf("unexpected files: %+v", out.Files)
	}
	diags := out.Files[0].Diagnostics
	if len(diags) != 1 || diags[0].Code != "REV3004" || diags[0].Line != 1 {
		t.Errorf("unexpected diagnostics: %+v", diags)
	}
}

func TestCheckShort(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{
		"a.rs": "//@[x] check-pass\n",
		"b.rs": "//@ run\n",
	}))

	stdout, _, err := runCLI(t, "check", "--format", "short")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.HasPrefix(stdout, "error REV3004 a.rs:1 ") || strings.Count(stdout, "\n") != 1 {
		t.Errorf("unexpected short output: %q", stdout)
	}
}

func TestCheckUsesProjectConfig(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"uitest.toml":     "[check]\nextensions = [\"ui\"]\njobs = 2\n",
		"tests/a.ui":      "//@ run: 3\n",
		"tests/b.rs":      "//@ edition: 2018\n//@ edition: 2018\n",
		"tests/.git/x.ui": "//@ nonsense\n",
	})
	t.Chdir(filepath.Join(dir, "tests"))

	stdout, stderr, err := runCLI(t, "check", "--ui", "off", "--quiet", ".")
	if err != nil {
		t.Fatalf("check failed: %v\n%s%s", err, stdout, stderr)
	}
	if stdout != "" {
		t.Errorf("quiet run must print nothing, got %q", stdout)
	}

	// --ext wins over the file
	if _, _, err := runCLI(t, "check", "--ui", "off", "--ext", "rs", "."); exitCode(err) != 1 {
		t.Errorf("expected b.rs to fail, got %v", err)
	}
}

func TestCheckCache(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{
		"a.rs": "//@ check-pass\n",
	}))
	cacheDir := filepath.Join(t.TempDir(), "cache")

	if _, _, err := runCLI(t, "check", "--ui", "off", "--cache", "--cache-dir", cacheDir, "a.rs"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stdout, _, err := runCLI(t, "check", "--ui", "off", "--cache", "--cache-dir", cacheDir, "a.rs")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(stdout, "1 files checked (1 cached)") {
		t.Errorf("expected a cached result, got %q", stdout)
	}
}

func TestCheckTraceDumpOnFailure(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{
		"bad.rs": "//@ run: x\n",
	}))

	_, stderr, err := runCLI(t, "check", "--ui", "off", "--quiet", "--trace-level", "detail", "--trace-mode", "ring", "bad.rs")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.Contains(stderr, "last") || !strings.Contains(stderr, "file:bad.rs") {
		t.Errorf("expected a trace dump on stderr, got:\n%s", stderr)
	}
}

func TestCheckErrors(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{"a.rs": ""}))

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"check", "--format", "xml"}, "unsupported format"},
		{[]string{"check", "--ui", "sometimes"}, "invalid --ui value"},
		{[]string{"check", "--path-mode", "short"}, "invalid path mode"},
		{[]string{"check", "--color", "maybe"}, "invalid --color value"},
		{[]string{"check", "missing"}, "failed to stat missing"},
		{[]string{"check", "--ext", "md", "."}, "no test files found"},
		{[]string{"check", "--trace-level", "loud"}, "invalid trace level"},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			_, stderr, err := runCLI(t, tc.args...)
			if err == nil || exitCode(err) != -1 {
				t.Fatalf("expected a plain error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
			if !strings.Contains(stderr, "error:") {
				t.Errorf("error was not printed: %q", stderr)
			}
		})
	}
}

func TestShowBuckets(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.rs": strings.Join([]string{
			"//@ revisions: x y",
			"//@ compile-flags: -O \"--cfg foo\"",
			"//@[x] ignore-32bit",
			"//@[y] run: 2",
			"fn main() {} //~ WARN: /unused .*/",
			"",
		}, "\n"),
	})

	stdout, stderr, err := runCLI(t, "show", filepath.Join(dir, "a.rs"))
	if err != nil {
		t.Fatalf("show failed: %v\n%s", err, stderr)
	}
	var out showOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	want := []bucketJSON{
		{
			Revisions:    []string{},
			Line:         2,
			CompileFlags: []string{"-O", "--cfg foo"},
			ErrorMatches: []matchJSON{{Level: "WARN", Pattern: "unused .*", Regex: true, Line: 5, DefinitionLine: 5}},
		},
		{Revisions: []string{"x"}, Line: 3, Ignore: []string{"32bit"}},
		{Revisions: []string{"y"}, Line: 4, Mode: "run(2)"},
	}
	if diff := cmp.Diff(want, out.Buckets); diff != "" {
		t.Errorf("buckets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, out.Revisions); diff != "" {
		t.Errorf("revisions mismatch (-want +got):\n%s", diff)
	}
}

func TestShowRevision(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.rs": "//@ revisions: x y\n//@ edition: 2021\n//@[x] ignore-target-wasm\n//@[y] check-pass\n",
	})
	path := filepath.Join(dir, "a.rs")

	cases := []struct {
		args []string
		want resolvedJSON
	}{
		{
			args: []string{"--revision", "x", "--host", "x86_64-unknown-linux-gnu", "--target", "wasm32-unknown-unknown", "--bits", "32"},
			want: resolvedJSON{
				Revision: "x",
				Target:   targetJSON{Host: "x86_64-unknown-linux-gnu", Target: "wasm32-unknown-unknown", Bits: 32},
				Skipped:  true,
				Edition:  "2021",
				Mode:     "fail",
			},
		},
		{
			args: []string{"--revision", "y", "--host", "aarch64-apple-darwin", "--bits", "64"},
			want: resolvedJSON{
				Revision: "y",
				Target:   targetJSON{Host: "aarch64-apple-darwin", Target: "aarch64-apple-darwin", Bits: 64},
				Edition:  "2021",
				Mode:     "pass",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.want.Revision, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, append([]string{"show", path}, tc.args...)...)
			if err != nil {
				t.Fatalf("show failed: %v\n%s", err, stderr)
			}
			var out showOutput
			if err := json.Unmarshal([]byte(stdout), &out); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, stdout)
			}
			if out.Resolved == nil || len(out.Buckets) != 0 {
				t.Fatalf("expected only the resolved view, got %s", stdout)
			}
			if diff := cmp.Diff(tc.want, *out.Resolved); diff != "" {
				t.Errorf("resolved mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShowConflictingRevision(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.rs": "//@ revisions: x\n//@ edition: 2018\n//@[x] edition: 2021\n",
	})
	_, stderr, err := runCLI(t, "show", "--color", "off", "--revision", "x", filepath.Join(dir, "a.rs"))
	if exitCode(err) != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.Contains(stderr, ":3: ERROR REV3001: `edition` specified twice") {
		t.Errorf("unexpected stderr:\n%s", stderr)
	}
}

func TestShowParseFailure(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.rs": "//@ complie-flags: -O\n",
	})
	stdout, stderr, err := runCLI(t, "show", "--color", "off", filepath.Join(dir, "a.rs"))
	if exitCode(err) != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if stdout != "" {
		t.Errorf("nothing may be printed on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "SYN2006") || !strings.Contains(stderr, "compile-flags") {
		t.Errorf("expected an unknown directive with a suggestion:\n%s", stderr)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Tool != "uitest" || payload.Version == "" {
		t.Errorf("unexpected payload: %+v", payload)
	}

	stdout, _, err = runCLI(t, "--color", "off", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "uitest ") {
		t.Errorf("unexpected version line %q", stdout)
	}
}

func TestCheckRepositoryTestdata(t *testing.T) {
	stdout, stderr, err := runCLI(t, "check", "--ui", "off", "--path-mode", "basename", filepath.Join("..", "..", "testdata", "ui"))
	if err != nil {
		t.Fatalf("check failed: %v\n%s%s", err, stdout, stderr)
	}
	if !strings.HasPrefix(stdout, "ok: 4 files checked") {
		t.Errorf("unexpected summary %q", stdout)
	}
}

func TestCheckWritesProfiles(t *testing.T) {
	t.Chdir(writeTree(t, map[string]string{"a.rs": "//@ check-pass\n"}))
	out := t.TempDir()
	memPath := filepath.Join(out, "mem.pprof")
	cpuPath := filepath.Join(out, "cpu.pprof")

	if _, stderr, err := runCLI(t, "--mem-profile", memPath, "--cpu-profile", cpuPath, "check", "--ui", "off", "a.rs"); err != nil {
		t.Fatalf("check failed: %v\n%s", err, stderr)
	}
	for _, path := range []string{memPath, cpuPath} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("profile %s was not written: %v", filepath.Base(path), err)
		}
	}
}
