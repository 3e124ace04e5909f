package driver

import (
	"errors"
	"fmt"

	"github.com/pryimak2/noir/internal/abi"
	"github.com/pryimak2/noir/internal/debuginfo"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/lower"
	"github.com/pryimak2/noir/internal/project/dag"
)

// CompileContract checks crate and compiles every entry point of its single
// contract. Functions that are not entry points are skipped. A failing entry
// point does not stop the others; the contract fails at the end with every
// error that was found.
func CompileContract(ctx *Context, crate dag.CrateID, opts CompileOptions) (*CompiledContract, []diag.Diagnostic, error) {
	checked, warnings, err := CheckCrate(ctx, crate, opts.DenyWarnings)
	if err != nil {
		return nil, nil, err
	}

	ids := ctx.Defs.Contracts(crate)
	switch {
	case len(ids) == 0:
		return nil, nil, fail(diag.Simple(diag.DrvNoContract,
			"cannot compile crate into a contract as it does not contain any contracts"))
	case len(ids) > 1:
		return nil, nil, fail(diag.Simple(diag.DrvMultipleContract,
			"packages are limited to a single contract"))
	}
	contract := ctx.Defs.Contract(ids[0])

	var (
		errs      []diag.Diagnostic
		functions []ContractFunction
		infos     []*debuginfo.DebugInfo
	)
	for _, id := range contract.Funcs {
		fn := ctx.Defs.Func(id)
		if !fn.IsEntryPoint() {
			continue
		}
		prog, err := CompileNoCheck(checked, opts, id, nil, true)
		if err != nil {
			log.Debugf("contract %s: function %s failed: %s", contract.Name, fn.Name, err)
			var rerr *lower.RuntimeError
			if errors.As(err, &rerr) {
				errs = append(errs, rerr.ToDiagnostic())
			} else {
				errs = append(errs, diag.NewError(diag.DrvCircuitError, fn.NameSpan, err.Error()))
			}
			continue
		}
		warnings = append(warnings, prog.Warnings...)
		infos = append(infos, prog.Debug)
		functions = append(functions, ContractFunction{
			Name:       fn.Name,
			Type:       functionTypeOf(fn),
			IsInternal: fn.Internal,
			ABI:        prog.ABI,
			Circuit:    prog.Circuit,
			Debug:      prog.Debug,
		})
	}
	if len(errs) > 0 {
		return nil, nil, fail(append(warnings, errs...)...)
	}
	if opts.DenyWarnings && len(warnings) > 0 {
		return nil, nil, fail(warnings...)
	}

	out := &CompiledContract{
		Name:      contract.Name,
		Functions: functions,
		FileMap:   debuginfo.FilterRelevantFiles(infos, ctx.Files),
		Version:   ctx.Version,
		Warnings:  warnings,
	}
	for _, ev := range contract.Events(ctx.Defs) {
		out.Events = append(out.Events, abi.EventFromStruct(ev))
	}
	if opts.PrintACIR {
		for _, f := range functions {
			fmt.Fprintf(opts.out(), "Compiled ACIR for %s::%s:\n%s", contract.Name, f.Name, f.Circuit)
		}
	}
	return out, warnings, nil
}
