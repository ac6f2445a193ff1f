package fuzztests

import (
	"os"
	"path/filepath"
	"testing"

	"uitest/internal/comments"
	"uitest/internal/source"
	"uitest/internal/testkit"
)

// TestTestdataParses keeps the seed corpus valid: a seed that fails to parse
// only ever exercises the error paths.
func TestTestdataParses(t *testing.T) {
	root := filepath.Join("..", "..", "testdata", "ui")
	files, err := source.Discover([]string{root}, source.DefaultExtensions)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatalf("no test files under %s", root)
	}
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			c, err := comments.Parse(content)
			if err != nil {
				t.Fatalf("parse failed:\n%v", err)
			}
			if err := testkit.CheckInvariants(c, content); err != nil {
				t.Error(err)
			}
		})
	}
}
