package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"uitest/internal/diag"
)

type palette struct {
	path, err, warn, info, code, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.path, p.err, p.warn, p.info, p.code, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes diagnostics in human-readable form, one block per diagnostic:
//
//	tests/ui/a.rs:2: ERROR REV3001: cannot specify `edition` twice
//	   2 | //@ edition: 2021
//
// Continuation lines of multi-line messages are indented under the first.
func Pretty(w io.Writer, reports []FileReport, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, r := range reports {
		path := r.displayPath(opts.PathMode, opts.BaseDir)
		for _, d := range r.Items {
			loc := path
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d", path, d.Line)
			}
			first, rest, _ := strings.Cut(d.Message, "\n")
			if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
				p.path.Sprint(loc),
				p.severity(d.Severity).Sprint(d.Severity.String()),
				p.code.Sprint(d.Code.ID()),
				first,
			); err != nil {
				return err
			}
			for line := range strings.SplitSeq(rest, "\n") {
				if line == "" {
					continue
				}
				if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
					return err
				}
			}
			if opts.ShowSource && r.File != nil && d.Line > 0 {
				text := r.File.GetLine(d.Line)
				if _, err := fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%4d |", d.Line), text); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Summary writes the closing line of a check run.
func Summary(w io.Writer, reports []FileReport, colored bool) error {
	p := newPalette(colored)
	failed, cached, errs, warns := 0, 0, 0, 0
	for _, r := range reports {
		hasErr := false
		for _, d := range r.Items {
			switch {
			case d.Severity >= diag.SevError:
				errs++
				hasErr = true
			case d.Severity == diag.SevWarning:
				warns++
			}
		}
		if hasErr {
			failed++
		}
		if r.Cached {
			cached++
		}
	}

	status := p.info.Sprint("ok")
	if failed > 0 {
		status = p.err.Sprint("FAILED")
	}
	_, err := fmt.Fprintf(w, "%s: %d files checked (%d cached), %d failed, %d errors, %d warnings\n",
		status, len(reports), cached, failed, errs, warns)
	return err
}
