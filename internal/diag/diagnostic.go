package diag

import (
	"github.com/pryimak2/noir/internal/source"
)

// Note is a secondary span with its own message ("defined here").
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a severity-tagged message anchored to a file.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New builds a diagnostic without notes.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError is New with SevError.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewWarning is New with SevWarning.
func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// Simple builds an error that is not tied to any source position. It is
// anchored to the default file of the session.
func Simple(code Code, msg string) Diagnostic {
	return NewError(code, source.Span{File: source.NoFileID}, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// IsError reports whether d counts as an error under a lenient policy.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}

// AsError returns a copy of d promoted to error severity.
func (d Diagnostic) AsError() Diagnostic {
	if d.Severity < SevError {
		d.Severity = SevError
	}
	return d
}

// File returns the file the diagnostic is anchored to.
func (d Diagnostic) File() source.FileID {
	return d.Primary.File
}

// HasErrors applies the pass/fail policy to diags. With denyWarnings any
// diagnostic fails; otherwise at least one error is needed.
func HasErrors(diags []Diagnostic, denyWarnings bool) bool {
	if denyWarnings {
		return len(diags) > 0
	}
	for i := range diags {
		if diags[i].IsError() {
			return true
		}
	}
	return false
}

// Warnings returns the diagnostics below error severity.
func Warnings(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if !d.IsError() {
			out = append(out, d)
		}
	}
	return out
}
