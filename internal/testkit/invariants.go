// Package testkit holds invariant checks shared by the tests and fuzz
// harnesses of the comment parser.
package testkit

import (
	"bytes"
	"fmt"
	"slices"

	"uitest/internal/comments"
	"uitest/internal/diag"
)

// CheckInvariants runs the structural checks every successfully parsed file
// must pass:
// 1) buckets are ordered by first use and reachable by their key
// 2) bucket keys only name declared revisions
// 3) every line number lies between the bucket's first use and the end of content
// 4) an annotation never targets a line below the one it is written on
func CheckInvariants(c *comments.Comments, content []byte) error {
	if c == nil {
		return fmt.Errorf("nil comments")
	}
	maxLine := bytes.Count(content, []byte{'\n'}) + 1
	revisions, declared := c.Revisions()

	prev := 0
	for _, b := range c.Buckets() {
		if b.Line < prev {
			return fmt.Errorf("bucket %v first used on line %d after a bucket of line %d", b.Revisions, b.Line, prev)
		}
		prev = b.Line
		if got, ok := c.Bucket(b.Revisions...); !ok || got.Line != b.Line || !slices.Equal(got.Revisions, b.Revisions) {
			return fmt.Errorf("bucket %v is not reachable by its key", b.Revisions)
		}
		for _, rev := range b.Revisions {
			if !declared || !slices.Contains(revisions, rev) {
				return fmt.Errorf("bucket %v names undeclared revision %q", b.Revisions, rev)
			}
		}

		inRange := func(what string, line int) error {
			if line < b.Line || line > maxLine {
				return fmt.Errorf("%s on line %d outside [%d, %d]", what, line, b.Line, maxLine)
			}
			return nil
		}
		if err := inRange("bucket", b.Line); err != nil {
			return err
		}
		if b.Edition != nil {
			if err := inRange("edition", b.Edition.Line); err != nil {
				return err
			}
		}
		if b.Mode != nil {
			if err := inRange("mode", b.Mode.Line); err != nil {
				return err
			}
		}
		for _, aux := range b.AuxBuilds {
			if err := inRange("aux-build", aux.Line); err != nil {
				return err
			}
		}
		for _, m := range b.ErrorMatches {
			if m.Pattern == nil {
				return fmt.Errorf("annotation on line %d has no pattern", m.DefinitionLine)
			}
			if err := inRange("annotation", m.DefinitionLine); err != nil {
				return err
			}
			if m.Line < 1 || m.Line > m.DefinitionLine {
				return fmt.Errorf("annotation on line %d targets line %d", m.DefinitionLine, m.Line)
			}
		}
	}
	return nil
}

// CheckErrors verifies a failed parse: at least one diagnostic, every one an
// error on an existing line, ordered by line.
func CheckErrors(errs diag.Errors, content []byte) error {
	if len(errs) == 0 {
		return fmt.Errorf("failure without diagnostics")
	}
	maxLine := bytes.Count(content, []byte{'\n'}) + 1
	prev := 0
	for _, d := range errs {
		if d.Severity != diag.SevError {
			return fmt.Errorf("line %d: non-error diagnostic %s", d.Line, d)
		}
		if d.Line < 1 || d.Line > maxLine {
			return fmt.Errorf("diagnostic on line %d outside [1, %d]: %s", d.Line, maxLine, d)
		}
		if d.Line < prev {
			return fmt.Errorf("diagnostics out of order: line %d after line %d", d.Line, prev)
		}
		prev = d.Line
	}
	return nil
}
