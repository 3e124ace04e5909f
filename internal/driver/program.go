package driver

import (
	"errors"
	"fmt"

	"github.com/pryimak2/noir/internal/debuginfo"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/lower"
	"github.com/pryimak2/noir/internal/mono"
	"github.com/pryimak2/noir/internal/project/dag"
)

// CompileMain checks crate and compiles its main function. cached is reused
// when its hash matches and nothing forces a recompilation. The returned
// diagnostics are the warnings of both phases.
func CompileMain(ctx *Context, crate dag.CrateID, opts CompileOptions, cached *CompiledProgram, force bool) (*CompiledProgram, []diag.Diagnostic, error) {
	checked, warnings, err := CheckCrate(ctx, crate, opts.DenyWarnings)
	if err != nil {
		return nil, nil, err
	}
	main, ok := ctx.Defs.MainFunction(crate)
	if !ok {
		return nil, nil, fail(diag.Simple(diag.DrvNoMain,
			"cannot compile crate into a program as it does not contain a `main` function"))
	}

	prog, err := CompileNoCheck(checked, opts, main, cached, force)
	if err != nil {
		var rerr *lower.RuntimeError
		if errors.As(err, &rerr) {
			return nil, nil, fail(rerr.ToDiagnostic())
		}
		return nil, nil, err
	}

	warnings = append(warnings, prog.Warnings...)
	if opts.DenyWarnings && len(prog.Warnings) > 0 {
		return nil, nil, fail(warnings...)
	}
	if opts.PrintACIR {
		fmt.Fprintf(opts.out(), "Compiled ACIR for main:\n%s", prog.Circuit)
	}
	return prog, warnings, nil
}

// CompileNoCheck compiles fn of an already checked crate. The function is
// monomorphized and hashed first; cached is returned unchanged when force is
// off, no trace option is set and its hash matches. Lowering failures are
// returned as *lower.RuntimeError.
func CompileNoCheck(c *Checked, opts CompileOptions, fn hir.FuncID, cached *CompiledProgram, force bool) (*CompiledProgram, error) {
	ctx := c.ctx
	name := "<unknown>"
	if f := c.Defs().Func(fn); f != nil {
		name = f.Name
	}

	done := ctx.phase("monomorphize")
	prog, err := mono.Monomorphize(c.Defs(), fn)
	if err != nil {
		done("failed")
		return nil, fmt.Errorf("monomorphize %s: %w", name, err)
	}
	hash := prog.Hash()
	done(fmt.Sprintf("%s: %d function(s)", name, len(prog.Functions)))

	if !force && !opts.traces() && cached != nil && cached.Hash == hash {
		log.Debugf("%s: reusing cached program %016x", name, hash)
		return cached, nil
	}
	log.Debugf("%s: compiling program %016x", name, hash)

	done = ctx.phase("lower")
	res, err := lower.CreateCircuit(prog, lower.Options{
		ShowSSA:     opts.ShowSSA,
		ShowBrillig: opts.ShowBrillig,
		Out:         opts.out(),
	})
	if err != nil {
		done("failed")
		return nil, err
	}
	done(fmt.Sprintf("%s: %d opcode(s)", name, len(res.Circuit.Opcodes)))

	return &CompiledProgram{
		Hash:     hash,
		Circuit:  res.Circuit,
		ABI:      res.ABI,
		Debug:    res.Debug,
		FileMap:  debuginfo.FilterRelevantFiles([]*debuginfo.DebugInfo{res.Debug}, ctx.Files),
		Version:  ctx.Version,
		Warnings: res.Warnings,
	}, nil
}
