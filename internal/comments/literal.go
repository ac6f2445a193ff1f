package comments

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"uitest/internal/diag"
)

// parseRevisions splits an optional `[a, b]` prefix off s. The names are
// returned in the order written.
func (p *parser) parseRevisions(s string) ([]string, string) {
	if !strings.HasPrefix(s, "[") {
		return nil, s
	}
	inner, rest, ok := strings.Cut(s[1:], "]")
	if !ok {
		p.errorf(diag.CommentSyntax, "`[` without corresponding `]`")
		return nil, s
	}
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	if strings.TrimSpace(inner) == "" {
		p.errorf(diag.CommentSyntax, "`[]` must name at least one revision")
		return nil, rest
	}
	names := strings.Split(inner, ",")
	for i := range names {
		names[i] = normalizeRevision(names[i])
	}
	return names, rest
}

func normalizeRevision(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// parseStr parses a string literal. s has to start with `"`; everything up to
// the next unescaped `"` is returned verbatim, escapes included. `\` escapes
// any character. The second result is the remaining text with leading
// whitespace removed.
func (p *parser) parseStr(s string) (string, string, bool) {
	first, size := utf8.DecodeRuneInString(s)
	switch {
	case s == "":
		p.errorf(diag.CommentSyntax, "expected quoted string, but found end of line")
		return "", "", false
	case first != '"':
		p.errorf(diag.CommentSyntax, "expected `\"`, got `%c`", first)
		return "", "", false
	}
	body := s[size:]
	escaped := false
	for i, c := range body {
		switch {
		case escaped:
			escaped = false
		case c == '"':
			return body[:i], strings.TrimLeftFunc(body[i+1:], unicode.IsSpace), true
		default:
			escaped = c == '\\'
		}
	}
	p.errorf(diag.CommentSyntax, "no closing quotes found for %s", body)
	return "", "", false
}

// unescape drops the backslash of every `\x` pair.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, c := range s {
		if !escaped && c == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(c)
	}
	return b.String()
}

func (p *parser) parseRegex(expr string) (*regexp.Regexp, bool) {
	re, err := regexp.Compile(expr)
	if err != nil {
		p.errorf(diag.CommentBadRegex, "invalid regex: %v", err)
		return nil, false
	}
	return re, true
}

// parseErrorPattern turns `/re/` into a Regex and anything else into a
// SubString. A bad regex is reported and kept as a SubString of the whole
// text, slashes included.
func (p *parser) parseErrorPattern(pattern string) Pattern {
	inner, ok := strings.CutPrefix(pattern, "/")
	if !ok {
		return SubString(pattern)
	}
	inner, ok = strings.CutSuffix(inner, "/")
	if !ok {
		p.errorf(diag.CommentSyntax, "expected regex pattern due to leading `/`, but found no closing `/`")
		return SubString(pattern)
	}
	if re, ok := p.parseRegex(inner); ok {
		return Regex{re}
	}
	return SubString(pattern)
}
