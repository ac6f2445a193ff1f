package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
)

// snippetSeeds cover every directive and annotation form, valid or not.
var snippetSeeds = []string{
	"",
	"fn main() {}\n",
	"//@ check-pass\n",
	"//@ run: 101\n//@ run\n",
	"//@ revisions: a b\n//@[a] edition: 2018\n//@[b,a] compile-flags: -O\n",
	"//@[a,b\n",
	"//@[] edition: 2021\n",
	"//@ compile-flags: --cfg \"feature=\\\"x\\\"\"\n",
	"//@ compile-flags: 'unclosed\n",
	"//@ rustc-env: A=1 B=2 NOEQ\n",
	"//@ normalize-stderr-test: \"ab\\\"c\" -> \"z\"\n",
	"//@ normalize-stderr-test: \"(\" -> \"x\"\n",
	"//@ normalize-stderr-test: \"a\" \"b\"\n",
	"//@ error-pattern: foo\n//@ error-in-other-file: /bar.*/\n",
	"//@ aux-build: dep.rs:proc-macro\n//@ aux-build: other.rs\n",
	"//@ ignore-32bit\n//@ only-target-wasm\n//@ ignore-on-host\n//@ only-xbit\n",
	"//@ require-annotations-for-level: WARN\n",
	"//@ complie-flags: -O\n",
	"//@ edition=2021\n",
	"x //~ ERROR: a\n//~| HELP: b\n//~^ NOTE: c\n",
	"//~^^^ ERROR: too far\n",
	"//~| ERROR: nothing above\n",
	"x //~ ERROR /unclosed(/\n",
	"x //~ error: lower\n//~[rev] WARN: scoped\n",
	"// @check-pass\n// ~ ERROR: x\n//[a] nope\n",
	"/// edition: 2021\n",
	"//@ \xff\n x //~ \xfe\n",
	"//@ revisions: a\r\n//@[a] check-pass\r\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range snippetSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// every *.rs file under testdata is a seed
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".rs" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
