package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"uitest/internal/diag"
)

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

// FileJSON groups the diagnostics of one test file.
type FileJSON struct {
	Path        string           `json:"path"`
	Cached      bool             `json:"cached,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Files  []FileJSON `json:"files"`
	Count  int        `json:"count"`
	Failed int        `json:"failed"`
}

// BuildDiagnosticsOutput assembles the JSON document without serializing it.
func BuildDiagnosticsOutput(reports []FileReport, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Files: make([]FileJSON, 0, len(reports))}
	for _, r := range reports {
		items := r.Items
		if opts.Max > 0 && opts.Max < len(items) {
			items = items[:opts.Max]
		}
		f := FileJSON{
			Path:        r.displayPath(opts.PathMode, opts.BaseDir),
			Cached:      r.Cached,
			Diagnostics: make([]DiagnosticJSON, 0, len(items)),
		}
		for _, d := range items {
			f.Diagnostics = append(f.Diagnostics, DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				Line:     d.Line,
			})
		}
		if slices.ContainsFunc(r.Items, func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError }) {
			out.Failed++
		}
		out.Count += len(f.Diagnostics)
		out.Files = append(out.Files, f)
	}
	return out
}

// JSON writes diagnostics as an indented JSON document.
func JSON(w io.Writer, reports []FileReport, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(reports, opts))
}
