package comments

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"uitest/internal/diag"
)

var cmpRegexp = cmp.Comparer(func(a, b *regexp.Regexp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
})

func mustParse(t *testing.T, src string) *Comments {
	t.Helper()
	c, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected parse failure:\n%v", err)
	}
	return c
}

func parseErrors(t *testing.T, src string) diag.Errors {
	t.Helper()
	c, err := Parse([]byte(src))
	if err == nil {
		t.Fatalf("expected parse failure, got %+v", c)
	}
	var errs diag.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected diag.Errors, got %T", err)
	}
	return errs
}

// findError returns the first diagnostic on line whose message contains substr.
func findError(errs diag.Errors, line int, substr string) (diag.Diagnostic, bool) {
	for _, d := range errs {
		if d.Line == line && strings.Contains(d.Message, substr) {
			return d, true
		}
	}
	return diag.Diagnostic{}, false
}

func expectError(t *testing.T, errs diag.Errors, line int, substr string) diag.Diagnostic {
	t.Helper()
	d, ok := findError(errs, line, substr)
	if !ok {
		t.Fatalf("expected error containing %q on line %d, got:\n%v", substr, line, errs)
	}
	return d
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}
