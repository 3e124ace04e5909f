// Package driver runs the compilation pipeline of one package: crate graph
// construction, the check phase and the program and contract compilers.
package driver

import (
	"github.com/tliron/commonlog"

	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/observ"
	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/stdlib"
)

var log = commonlog.GetLogger("nargo.driver")

// Context is one compilation session. It owns the file manager, the crate
// graph and the definition interner. The check phase is the only writer of
// the interner; compilers read it through a *Checked handle.
type Context struct {
	Files *source.FileSet
	Graph *dag.Graph
	Defs  *hir.Interner

	// Version is the producer version stamped on every artifact.
	Version string
	// Timer records phase durations when set.
	Timer *observ.Timer

	stdlib dag.CrateID
}

// NewContext returns a session with the standard library registered.
func NewContext(version string) *Context {
	ctx := &Context{
		Files:   source.NewFileSet(),
		Graph:   dag.New(),
		Defs:    hir.NewInterner(),
		Version: version,
	}
	ctx.stdlib = ctx.Graph.AddStdlib(stdlib.Register(ctx.Files))
	return ctx
}

// Stdlib returns the standard library crate.
func (ctx *Context) Stdlib() dag.CrateID {
	return ctx.stdlib
}

func (ctx *Context) phase(name string) func(note string) {
	if ctx.Timer == nil {
		return func(string) {}
	}
	return ctx.Timer.Track(name)
}
