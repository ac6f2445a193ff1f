package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// uiMode selects the progress view of `check`.
type uiMode uint8

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

var uiModeNames = [...]string{
	uiModeAuto: "auto",
	uiModeOn:   "on",
	uiModeOff:  "off",
}

func (m uiMode) String() string { return uiModeNames[m] }

// parseUIMode reads a ui setting. origin names where value came from and
// only shows up in the error.
func parseUIMode(value, origin string) (uiMode, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return uiModeAuto, nil
	}
	for m, name := range uiModeNames {
		if v == name {
			return uiMode(m), nil
		}
	}
	return uiModeAuto, fmt.Errorf("invalid %s value %q (expected auto|on|off)", origin, value)
}

// useTUI reports whether the progress view should draw on out. Auto needs
// out to be a terminal.
func useTUI(mode uiMode, out io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f)
}
