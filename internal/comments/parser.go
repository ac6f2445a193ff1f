package comments

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"uitest/internal/diag"
)

const (
	commandSigil    = "//@"
	annotationSigil = "//~"
)

// parser holds the state of one Parse call. Nothing in it outlives the call.
type parser struct {
	comments *Comments
	errs     *diag.Bag
	// line is the 1-based line currently being parsed.
	line int
}

func newParser() *parser {
	return &parser{comments: newComments(), errs: diag.NewBag(0)}
}

// Parse extracts the test configuration from the comments in content.
//
// Parsing never stops at the first problem. If anything was wrong the
// returned error is a diag.Errors holding every diagnostic, ordered by line.
func Parse(content []byte) (*Comments, error) {
	p := newParser()
	// Target line a `//~|` annotation refers to; 0 while there is none.
	fallthroughTo := 0
	for line := range bytes.Lines(content) {
		p.line++
		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))
		p.parseLine(&fallthroughTo, line)
	}
	p.checkRevisions()
	if p.errs.Len() > 0 {
		p.errs.Sort()
		return nil, p.errs.Errors()
	}
	return p.comments, nil
}

func (p *parser) parseLine(fallthroughTo *int, line []byte) {
	if command, ok := bytes.CutPrefix(bytes.TrimSpace(line), []byte(commandSigil)); ok {
		if !utf8.Valid(command) {
			p.notUTF8()
			return
		}
		p.parseCommand(strings.TrimSpace(string(command)))
		return
	}
	if _, pattern, ok := bytes.Cut(line, []byte(annotationSigil)); ok {
		if !utf8.Valid(pattern) {
			p.notUTF8()
			return
		}
		revisions, rest := p.parseRevisions(string(pattern))
		p.parsePattern(p.comments.bucket(revisions, p.line), rest, fallthroughTo)
		return
	}
	*fallthroughTo = 0
	p.checkPlainComments(line)
}

// checkPlainComments looks at every `//` of a line that is neither a directive
// nor an annotation. Directive-like text there would silently do nothing.
// Each marker only sees the text up to the next one, which keeps the check
// linear in the line length.
func (p *parser) checkPlainComments(line []byte) {
	for pos := 0; ; {
		i := bytes.Index(line[pos:], []byte("//"))
		if i < 0 {
			return
		}
		pos += i + 2
		rest := line[pos:]
		// the next marker gets its own pass
		if j := bytes.Index(rest, []byte("//")); j >= 0 {
			rest = rest[:j]
		}
		candidates := [][]byte{rest}
		if trimmed, ok := bytes.CutPrefix(rest, []byte(" ")); ok {
			candidates = append(candidates, trimmed)
		}
		for _, cand := range candidates {
			if len(cand) == 0 {
				continue
			}
			next, _ := utf8.DecodeRune(cand)
			if next != '#' && strings.ContainsRune("@~[]^|", next) {
				if !utf8.Valid(cand) {
					p.notUTF8()
					return
				}
				p.errorf(diag.CommentSuspicious,
					"comment looks suspiciously like a test suite command: `%s`\n"+
						"All `//@` test suite commands must be at the start of the line.\n"+
						"The `//` must be directly followed by `@` or `~`. Use `//#` if you wanted a comment.",
					cand)
				continue
			}
			if utf8.Valid(cand) && looksLikeCommand(string(cand)) {
				p.errorf(diag.CommentLegacyStyle,
					"a compiletest-rs style comment was detected.\n"+
						"Please use text that could not also be interpreted as a command,\n"+
						"and prefix all actual commands with `//@`")
			}
		}
	}
}

// looksLikeCommand reports whether text parses as a directive without any
// error. The trial parse is thrown away.
func looksLikeCommand(text string) bool {
	trial := newParser()
	trial.line = 1
	trial.parseCommand(strings.TrimRightFunc(text, unicode.IsSpace))
	return trial.errs.Len() == 0
}

func (p *parser) parseCommand(command string) {
	revisions, command := p.parseRevisions(command)

	// Commands are letters, digits, dashes or underscores; everything after
	// the first other character is the argument.
	name, args := command, ""
	if i := strings.IndexFunc(command, notCommandRune); i >= 0 {
		name, args = command[:i], command[i:]
		sep, size := utf8.DecodeRuneInString(args)
		p.check(sep == ':' || sep == ' ', diag.CommentSyntax,
			"test command must be followed by `:` or a space (or end the line)")
		args = strings.TrimSpace(args[size:])
	}

	if name == "revisions" {
		p.check(len(revisions) == 0, diag.CommentRevisionScope,
			"revisions cannot be declared under a revision")
		p.check(!p.comments.hasRevisions, diag.CommentDuplicate,
			"cannot specify `revisions` twice")
		names := strings.Fields(args)
		for i := range names {
			names[i] = normalizeRevision(names[i])
		}
		p.comments.revisions = names
		p.comments.hasRevisions = true
		return
	}
	p.runCommand(p.comments.bucket(revisions, p.line), name, args)
}

func notCommandRune(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_'
}

// checkRevisions validates every bucket key once all lines are read.
func (p *parser) checkRevisions() {
	c := p.comments
	for _, r := range c.order {
		if !c.hasRevisions {
			if len(r.Revisions) > 0 {
				p.errorAt(r.Line, diag.CommentNoRevisions, "there are no revisions in this test")
			}
			continue
		}
		for _, rev := range r.Revisions {
			if !slices.Contains(c.revisions, rev) {
				p.errorAt(r.Line, diag.CommentUnknownRevision, fmt.Sprintf("the revision `%s` is not known", rev))
			}
		}
	}
}

func (p *parser) errorAt(line int, code diag.Code, msg string) {
	p.errs.Add(diag.NewError(code, line, msg))
}

func (p *parser) errorf(code diag.Code, format string, args ...any) {
	p.errorAt(p.line, code, fmt.Sprintf(format, args...))
}

// check records msg unless cond holds.
func (p *parser) check(cond bool, code diag.Code, msg string) bool {
	if !cond {
		p.errorAt(p.line, code, msg)
	}
	return cond
}

func (p *parser) notUTF8() {
	p.errorf(diag.CommentNotUTF8, "comment is not valid UTF-8")
}
