package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the --ui setting: whether the per-package progress view owns
// the terminal while a workspace compiles.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = map[string]uiMode{
	"":     uiModeAuto,
	"auto": uiModeAuto,
	"on":   uiModeOn,
	"off":  uiModeOff,
}

func readUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.TrimSpace(strings.ToLower(value))]
	if !ok {
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// shouldUseTUI resolves auto to the progress view only when stdout is a
// terminal; piped output gets plain summary lines.
func shouldUseTUI(mode uiMode) bool {
	if mode == uiModeAuto {
		return isTerminal(os.Stdout)
	}
	return mode == uiModeOn
}
