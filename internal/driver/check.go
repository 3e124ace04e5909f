package driver

import (
	"fmt"
	"slices"

	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/sema"
	"github.com/pryimak2/noir/internal/source"
)

// Checked is a crate that passed the check phase. It only exposes read
// access to the definitions, so compilers cannot modify them.
type Checked struct {
	ctx   *Context
	crate dag.CrateID
}

// Crate returns the checked crate.
func (c *Checked) Crate() dag.CrateID { return c.crate }

// Defs returns read access to the collected definitions.
func (c *Checked) Defs() hir.Reader { return c.ctx.Defs }

// Files returns the file manager of the session.
func (c *Checked) Files() *source.FileSet { return c.ctx.Files }

// Version returns the producer version of the session.
func (c *Checked) Version() string { return c.ctx.Version }

// CheckCrate collects, resolves and type checks crate and its dependencies.
// With denyWarnings any diagnostic fails the check; otherwise only errors
// do. On success the (possibly empty) warnings are returned; on failure the
// error is a *CompileError holding every diagnostic.
func CheckCrate(ctx *Context, crate dag.CrateID, denyWarnings bool) (*Checked, []diag.Diagnostic, error) {
	if !ctx.Graph.Has(crate) {
		return nil, nil, fmt.Errorf("check crate %d: %w", crate, dag.ErrUnknownCrate)
	}
	done := ctx.phase("check")
	// the collector keeps its own copy for later calls
	diags := slices.Clone(sema.CollectDefs(sema.Options{Files: ctx.Files, Graph: ctx.Graph, Defs: ctx.Defs}, crate))
	done(fmt.Sprintf("%d diagnostic(s)", len(diags)))

	if diag.HasErrors(diags, denyWarnings) {
		return nil, nil, fail(diags...)
	}
	return &Checked{ctx: ctx, crate: crate}, diags, nil
}
