package comments

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// padded returns n filler lines followed by ls, so that the first element of
// ls lands on line n+1.
func padded(n int, ls ...string) string {
	filler := make([]string, n, n+len(ls))
	for i := range filler {
		filler[i] = "fn filler() {}"
	}
	return lines(append(filler, ls...)...)
}

type matchSummary struct {
	Line, DefinitionLine int
	Level                Level
	Pattern              string
	Regex                bool
}

func summarize(ms []ErrorMatch) []matchSummary {
	out := make([]matchSummary, 0, len(ms))
	for _, m := range ms {
		_, isRegex := m.Pattern.(Regex)
		out = append(out, matchSummary{
			Line:           m.Line,
			DefinitionLine: m.DefinitionLine,
			Level:          m.Level,
			Pattern:        m.Pattern.String(),
			Regex:          isRegex,
		})
	}
	return out
}

func TestAnnotation_LineTargets(t *testing.T) {
	c := mustParse(t, padded(9,
		"let x: u8 = 256; //~ ERROR: literal out of range",
		"//~| NOTE: the literal `256` does not fit",
		"//~^^ WARN: unused variable",
	))
	def, _ := c.Bucket()
	want := []matchSummary{
		{Line: 10, DefinitionLine: 10, Level: LevelError, Pattern: "literal out of range"},
		{Line: 10, DefinitionLine: 11, Level: LevelNote, Pattern: "the literal `256` does not fit"},
		{Line: 10, DefinitionLine: 12, Level: LevelWarn, Pattern: "unused variable"},
	}
	if diff := cmp.Diff(want, summarize(def.ErrorMatches)); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotation_FallthroughFollowsLastTarget(t *testing.T) {
	c := mustParse(t, lines(
		"foo();",
		"bar();",
		"//~^ ERROR: in bar",
		"//~| HELP: still bar",
		"//@ edition: 2021",
		"//~| NOTE: directives keep the chain",
	))
	def, _ := c.Bucket()
	for _, m := range def.ErrorMatches {
		if m.Line != 2 {
			t.Errorf("annotation on line %d targets line %d, expected 2", m.DefinitionLine, m.Line)
		}
	}
	if len(def.ErrorMatches) != 3 {
		t.Errorf("expected 3 matches, got %d", len(def.ErrorMatches))
	}
}

func TestAnnotation_FallthroughResetByPlainLine(t *testing.T) {
	errs := parseErrors(t, lines(
		"foo(); //~ ERROR: boom",
		"bar();",
		"//~| NOTE: too late",
	))
	expectError(t, errs, 3, "`//~|` pattern without preceding line")
}

func TestAnnotation_FallthroughAtStart(t *testing.T) {
	errs := parseErrors(t, lines("//~| ERROR: nothing above"))
	expectError(t, errs, 1, "`//~|` pattern without preceding line")
}

func TestAnnotation_CaretOutOfRange(t *testing.T) {
	errs := parseErrors(t, lines(
		"fn main() {}",
		"//~^^^ ERROR: x",
	))
	expectError(t, errs, 2, "trying to refer to 3 lines above, but there are only 1 lines above")
}

func TestAnnotation_Patterns(t *testing.T) {
	c := mustParse(t, lines(
		"a //~ ERROR: /fo.o/",
		"b //~ ERROR: fo.o",
	))
	def, _ := c.Bucket()
	re, sub := def.ErrorMatches[0].Pattern, def.ErrorMatches[1].Pattern
	if _, ok := re.(Regex); !ok {
		t.Fatalf("expected a regex, got %T", re)
	}
	if _, ok := sub.(SubString); !ok {
		t.Fatalf("expected a substring, got %T", sub)
	}
	if !re.Matches("error: foxo happened") {
		t.Errorf("regex should match any character in place of `.`")
	}
	if sub.Matches("error: foxo happened") {
		t.Errorf("substring must treat `.` literally")
	}
	if !sub.Matches("error: fo.o happened") {
		t.Errorf("substring should match literal text")
	}
}

func TestAnnotation_BadRegexKeptAsSubString(t *testing.T) {
	errs := parseErrors(t, lines("c //~ ERROR: /a(b/"))
	expectError(t, errs, 1, "invalid regex")
}

func TestAnnotation_Errors(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		error string
	}{
		{"empty", "x //~", "no pattern specified"},
		{"no level", "x //~ : boom", "unknown level ``"},
		{"level only", "x //~ ERROR", "pattern without level"},
		{"unknown level", "x //~ FATAL: boom", "unknown level `FATAL`"},
		{"lowercase annotation level", "x //~ Error: boom", "unknown level `Error`"},
		{"no colon", "x //~ ERROR boom", "no `:` after level found"},
		{"empty text", "x //~ ERROR:   ", "no pattern specified"},
		{"unterminated regex", "x //~ ERROR: /abc", "found no closing `/`"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, parseErrors(t, lines(tc.line)), 1, tc.error)
		})
	}
}

func TestAnnotation_LevelsAndICE(t *testing.T) {
	c := mustParse(t, lines(
		"x //~ HELP: h",
		"x //~ error: lowercase output spelling",
		"x //~ warning: w",
	))
	def, _ := c.Bucket()
	var got []string
	for _, m := range def.ErrorMatches {
		got = append(got, m.Level.String())
	}
	if s := strings.Join(got, ","); s != "HELP,ERROR,WARN" {
		t.Errorf("unexpected levels %s", s)
	}
}
