package comments

import "fmt"

// ModeKind selects how the execution engine treats a test.
type ModeKind uint8

const (
	// ModeFail expects compilation to fail. It is never set by a directive
	// and only serves as a fallback for consumers.
	ModeFail ModeKind = iota
	// ModePass expects compilation to succeed (check-pass).
	ModePass
	// ModeRun builds and runs the test, expecting ExitCode (run).
	ModeRun
	// ModeFix applies suggested fixes and re-checks them (run-rustfix).
	ModeFix
)

// Mode is a run-mode override.
type Mode struct {
	Kind     ModeKind
	ExitCode int
}

func (m Mode) String() string {
	switch m.Kind {
	case ModeFail:
		return "fail"
	case ModePass:
		return "pass"
	case ModeRun:
		return fmt.Sprintf("run(%d)", m.ExitCode)
	case ModeFix:
		return "fix"
	}
	return "unknown"
}
