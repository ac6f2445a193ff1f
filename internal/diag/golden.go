package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     int
	Message  string
}

// FileDiagnostics pairs a file path with the diagnostics found in it.
type FileDiagnostics struct {
	Path  string
	Items []Diagnostic
}

// FormatShortDiagnostics renders diagnostics of several files into a stable,
// single-line-per-entry form: "<sev> <code> <path>:<line> <message>".
// Multi-line messages are folded onto one line.
func FormatShortDiagnostics(files []FileDiagnostics) string {
	rendered := make([]goldenDiagnostic, 0, len(files))
	for _, f := range files {
		path := filepath.ToSlash(f.Path)
		for _, d := range f.Items {
			rendered = append(rendered, goldenDiagnostic{
				Severity: severityLabel(d.Severity),
				Code:     d.Code.ID(),
				Path:     path,
				Line:     d.Line,
				Message:  foldMessage(d.Message),
			})
		}
	}
	if len(rendered) == 0 {
		return ""
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		return di.Line < dj.Line
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func severityLabel(sev Severity) string {
	return strings.ToLower(sev.String())
}

func foldMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
