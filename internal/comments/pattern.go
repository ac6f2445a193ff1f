package comments

import (
	"regexp"
	"strings"
)

// Pattern matches diagnostic messages. It is either a SubString or a Regex.
type Pattern interface {
	Matches(msg string) bool
	String() string
}

// SubString matches messages containing it.
type SubString string

func (s SubString) Matches(msg string) bool { return strings.Contains(msg, string(s)) }

func (s SubString) String() string { return string(s) }

// Regex matches messages the expression matches anywhere.
type Regex struct {
	*regexp.Regexp
}

func (r Regex) Matches(msg string) bool { return r.MatchString(msg) }

// ErrorMatch is one `//~` expectation.
type ErrorMatch struct {
	Pattern Pattern
	Level   Level
	// DefinitionLine is where the annotation was written.
	DefinitionLine int
	// Line is the line the diagnostic is expected on.
	Line int
}

// Normalization is a stderr rewrite rule from normalize-stderr-test.
type Normalization struct {
	Pattern     *regexp.Regexp
	Replacement []byte
}

// Apply replaces every match in out with the literal replacement.
func (n Normalization) Apply(out []byte) []byte {
	return n.Pattern.ReplaceAllLiteral(out, n.Replacement)
}
