package diagfmt

import (
	"io"

	"uitest/internal/diag"
)

// Short writes one line per diagnostic, sorted by path and line, in the form
// "<sev> <code> <path>:<line> <message>". The output is stable enough to be
// kept as a golden file.
func Short(w io.Writer, reports []FileReport, opts JSONOpts) error {
	files := make([]diag.FileDiagnostics, 0, len(reports))
	for _, r := range reports {
		if len(r.Items) == 0 {
			continue
		}
		files = append(files, diag.FileDiagnostics{
			Path:  r.displayPath(opts.PathMode, opts.BaseDir),
			Items: r.Items,
		})
	}
	out := diag.FormatShortDiagnostics(files)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
