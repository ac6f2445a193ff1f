package comments

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// ConditionKind distinguishes the platform predicates of ignore-/only- directives.
type ConditionKind uint8

const (
	// CondHost: Value must appear in the host triple.
	CondHost ConditionKind = iota + 1
	// CondTarget: Value must appear in the target triple.
	CondTarget
	// CondBitwidth: the target pointer width equals Bits.
	CondBitwidth
	// CondOnHost: the target is the host.
	CondOnHost
)

// Condition is the predicate named by the suffix of an ignore-/only- directive.
type Condition struct {
	Kind  ConditionKind
	Value string
	Bits  uint8
}

// Target describes the platform a test would run on.
type Target struct {
	Host   string
	Target string
	Bits   uint8
}

// ParseCondition parses the part of a directive name after `ignore-` or `only-`.
func ParseCondition(c string) (Condition, error) {
	if c == "on-host" {
		return Condition{Kind: CondOnHost}, nil
	}
	if bits, ok := strings.CutSuffix(c, "bit"); ok {
		n, err := strconv.ParseUint(bits, 10, 64)
		if err != nil {
			return Condition{}, fmt.Errorf("invalid ignore/only filter ending in 'bit': %q is not a valid bitwidth", c)
		}
		width, err := safecast.Conv[uint8](n)
		if err != nil {
			return Condition{}, fmt.Errorf("invalid ignore/only filter ending in 'bit': %q is not a valid bitwidth", c)
		}
		return Condition{Kind: CondBitwidth, Bits: width}, nil
	}
	if triple, ok := strings.CutPrefix(c, "target-"); ok {
		return Condition{Kind: CondTarget, Value: triple}, nil
	}
	if triple, ok := strings.CutPrefix(c, "host-"); ok {
		return Condition{Kind: CondHost, Value: triple}, nil
	}
	return Condition{}, fmt.Errorf("`%s` is not a valid condition, expected `on-host`, /[0-9]+bit/, /host-.*/, or /target-.*/", c)
}

// Holds evaluates the condition for t.
func (c Condition) Holds(t Target) bool {
	switch c.Kind {
	case CondHost:
		return strings.Contains(t.Host, c.Value)
	case CondTarget:
		return strings.Contains(t.Target, c.Value)
	case CondBitwidth:
		return c.Bits == t.Bits
	case CondOnHost:
		return t.Host == t.Target
	}
	return false
}

func (c Condition) String() string {
	switch c.Kind {
	case CondHost:
		return "host-" + c.Value
	case CondTarget:
		return "target-" + c.Value
	case CondBitwidth:
		return fmt.Sprintf("%dbit", c.Bits)
	case CondOnHost:
		return "on-host"
	}
	return "unknown"
}
