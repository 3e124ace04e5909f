package lower

import (
	"fmt"

	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/source"
)

// RuntimeError is a program that type checks but cannot be turned into a
// circuit. CallStack lists source positions, outermost call first.
type RuntimeError struct {
	Code      diag.Code
	Msg       string
	CallStack []source.Span
}

func (e *RuntimeError) Error() string {
	if n := len(e.CallStack); n > 0 {
		return fmt.Sprintf("%s (at %s)", e.Msg, e.CallStack[n-1])
	}
	return e.Msg
}

// ToDiagnostic anchors the error at the innermost position; every outer call
// site becomes a note.
func (e *RuntimeError) ToDiagnostic() diag.Diagnostic {
	primary := source.Span{File: source.NoFileID}
	n := len(e.CallStack)
	if n > 0 {
		primary = e.CallStack[n-1]
	}
	d := diag.NewError(e.Code, primary, e.Msg)
	for i := n - 2; i >= 0; i-- {
		d = d.WithNote(e.CallStack[i], "called from here")
	}
	return d
}
