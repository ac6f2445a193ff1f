package comments

import "fmt"

// Level is the severity a diagnostic annotation expects. It is independent of
// diag.Severity: these are the levels of the compiler under test, not ours.
type Level uint8

const (
	LevelFailureNote Level = iota
	LevelNote
	LevelHelp
	LevelWarn
	LevelError
	// LevelICE is an internal compiler error.
	LevelICE
)

func (l Level) String() string {
	switch l {
	case LevelFailureNote:
		return "failure-note"
	case LevelNote:
		return "NOTE"
	case LevelHelp:
		return "HELP"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelICE:
		return "ICE"
	}
	return "UNKNOWN"
}

// ParseLevel parses the fixed, case-sensitive level vocabulary. Both the
// annotation spelling (ERROR) and the compiler output spelling (error) are
// accepted.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "ERROR", "error":
		return LevelError, nil
	case "WARN", "warning":
		return LevelWarn, nil
	case "HELP", "help":
		return LevelHelp, nil
	case "NOTE", "note":
		return LevelNote, nil
	case "failure-note":
		return LevelFailureNote, nil
	case "error: internal compiler error":
		return LevelICE, nil
	}
	return 0, fmt.Errorf("unknown level `%s`", s)
}
