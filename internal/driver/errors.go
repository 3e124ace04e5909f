package driver

import (
	"errors"
	"fmt"

	"github.com/pryimak2/noir/internal/diag"
)

// CompileError is a failed check or compilation. Diagnostics holds everything
// that was found, warnings included, so callers can render all of it.
type CompileError struct {
	Diagnostics []diag.Diagnostic
}

func (e *CompileError) Error() string {
	errs := 0
	for _, d := range e.Diagnostics {
		if d.IsError() {
			errs++
		}
	}
	if errs == 0 {
		return fmt.Sprintf("compilation failed: %d warning(s) denied", len(e.Diagnostics))
	}
	return fmt.Sprintf("compilation failed with %d error(s)", errs)
}

// DiagnosticsOf returns the diagnostics carried by err, if it is (or wraps)
// a *CompileError.
func DiagnosticsOf(err error) ([]diag.Diagnostic, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Diagnostics, true
	}
	return nil, false
}

func fail(diags ...diag.Diagnostic) error {
	return &CompileError{Diagnostics: diags}
}
