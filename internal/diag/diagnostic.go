package diag

import "fmt"

// Diagnostic is one problem found in a test file. Line is 1-based; zero means
// the problem concerns the file as a whole.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Line     int
	Message  string
}

func New(sev Severity, code Code, line int, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Message:  msg,
	}
}

func NewError(code Code, line int, msg string) Diagnostic {
	return New(SevError, code, line, msg)
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Code.ID(), d.Message)
}
