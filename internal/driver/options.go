package driver

import (
	"io"
	"os"
)

// CompileOptions controls the compilers. The toml keys match the CLI flags so
// the options can also come from a config file.
type CompileOptions struct {
	// PrintACIR renders every compiled circuit to Output.
	PrintACIR bool `toml:"print-acir"`
	// ShowSSA prints the monomorphized program before lowering.
	ShowSSA bool `toml:"show-ssa"`
	// ShowBrillig prints the unconstrained calls of each circuit.
	ShowBrillig bool `toml:"show-brillig"`
	// DenyWarnings turns every warning into a failure.
	DenyWarnings bool `toml:"deny-warnings"`
	// SilenceWarnings hides warnings when reporting.
	SilenceWarnings bool `toml:"silence-warnings"`

	// Output receives traces and printed circuits; stdout when nil.
	Output io.Writer `toml:"-"`
}

func (o CompileOptions) out() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// traces reports whether any option produces output that a cache hit would
// skip.
func (o CompileOptions) traces() bool {
	return o.PrintACIR || o.ShowSSA || o.ShowBrillig
}
