package diag

// Severity orders diagnostics from informational to fatal. Only SevError
// fails a compilation on its own; warnings fail it under deny-warnings.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// String is the upper-case tag used in pretty and JSON output.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Label is the lower-case tag of one-line output.
func (s Severity) Label() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}
