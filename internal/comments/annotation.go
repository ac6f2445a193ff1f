package comments

import (
	"strings"
	"unicode"

	"uitest/internal/diag"
)

// parsePattern parses the text after `//~` (and after its revision prefix):
//
//	(\||\^+)? *LEVEL: pattern
//
// fallthroughTo carries the target line of the previous annotation so that
// `|` can refer to it.
func (p *parser) parsePattern(r *Revisioned, pattern string, fallthroughTo *int) {
	var matchLine int
	switch {
	case pattern == "":
		p.errorf(diag.CommentSyntax, "no pattern specified")
		return
	case pattern[0] == '|':
		if *fallthroughTo == 0 {
			p.errorf(diag.CommentBadLineOffset, "`//~|` pattern without preceding line")
			return
		}
		matchLine = *fallthroughTo
		pattern = pattern[1:]
	case pattern[0] == '^':
		offset := len(pattern) - len(strings.TrimLeft(pattern, "^"))
		// lines are 1-based, so a target line of 0 is invalid
		if p.line-offset <= 0 {
			p.errorf(diag.CommentBadLineOffset,
				"//~^ pattern is trying to refer to %d lines above, but there are only %d lines above",
				offset, p.line-1)
			return
		}
		matchLine = p.line - offset
		pattern = pattern[offset:]
	default:
		matchLine = p.line
	}

	pattern = strings.TrimLeftFunc(pattern, unicode.IsSpace)
	end := strings.IndexFunc(pattern, func(c rune) bool {
		return !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z')
	})
	if end < 0 {
		p.errorf(diag.CommentSyntax, "pattern without level")
		return
	}
	level, err := ParseLevel(pattern[:end])
	if err != nil {
		p.errorf(diag.CommentBadLevel, "%v", err)
		return
	}
	text, ok := strings.CutPrefix(pattern[end:], ":")
	if !ok {
		p.errorf(diag.CommentSyntax, "no `:` after level found")
		return
	}
	text = strings.TrimSpace(text)
	p.check(text != "", diag.CommentSyntax, "no pattern specified")

	pat := p.parseErrorPattern(text)
	*fallthroughTo = matchLine
	r.ErrorMatches = append(r.ErrorMatches, ErrorMatch{
		Pattern:        pat,
		Level:          level,
		DefinitionLine: p.line,
		Line:           matchLine,
	})
}
