package diag

// Reporter is the minimal contract for receiving diagnostics.
// Implementations: BagReporter (stores into a Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, line int, msg string)
}

// BagReporter adapts a *Bag to Reporter.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, line int, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(New(sev, code, line, msg))
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, int, string) {}
