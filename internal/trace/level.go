package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level includes the scopes of the
// levels below it.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // pass boundaries, kept for a dump on failure
	LevelPhase        // driver and pass boundaries
	LevelDetail       // plus one span per file
	LevelDebug        // everything, per-line events included
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepest is the finest scope each level lets through.
var deepest = [...]Scope{
	LevelError:  ScopePass,
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeLine,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if l == LevelOff || int(l) >= len(deepest) {
		return false
	}
	return scope <= deepest[l]
}
