// Package sema collects the definitions of a crate: it parses the crate
// root, declares items, resolves imports and names, type checks function
// bodies and stores the result in a hir.Interner.
package sema

import (
	"slices"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/parser"
	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

// Options configure a collection pass.
type Options struct {
	Files *source.FileSet
	Graph *dag.Graph
	Defs  *hir.Interner
	// MaxDiagnostics limits the diagnostics kept per crate; zero means no
	// limit.
	MaxDiagnostics int
}

// CollectDefs collects crate and every crate it depends on, dependencies
// first. Crates collected by an earlier call are not collected again; their
// stored diagnostics are returned once more so that the result only depends
// on the crate graph.
func CollectDefs(opts Options, crate dag.CrateID) []diag.Diagnostic {
	if !opts.Graph.Has(crate) {
		return nil
	}
	var out []diag.Diagnostic
	for _, id := range opts.Graph.ToposortKahn(crate).Order {
		defs, ok := opts.Defs.Crate(id)
		if !ok {
			defs = newCollector(opts, id).run()
		}
		out = append(out, defs.Diagnostics...)
	}
	return out
}

type structState uint8

const (
	structPending structState = iota
	structResolving
	structDone
)

type pendingStruct struct {
	decl     *ast.Struct
	contract *hir.Contract
	state    structState
}

type pendingFunc struct {
	id       hir.FuncID
	decl     *ast.Func
	contract *hir.Contract
}

// collector processes one crate.
type collector struct {
	opts     Options
	crate    dag.CrateID
	file     source.FileID
	defs     *hir.CrateDefs
	bag      *diag.Bag
	reporter diag.Reporter

	structs     map[hir.StructID]*pendingStruct
	structOrder []hir.StructID
	funcs       []pendingFunc
	usedImports map[string]bool
}

func newCollector(opts Options, crate dag.CrateID) *collector {
	root := opts.Graph.Crate(crate).RootFile
	bag := diag.NewBag(opts.MaxDiagnostics)
	return &collector{
		opts:        opts,
		crate:       crate,
		file:        root,
		defs:        hir.NewCrateDefs(crate, root),
		bag:         bag,
		reporter:    diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		structs:     make(map[hir.StructID]*pendingStruct),
		usedImports: make(map[string]bool),
	}
}

func (c *collector) run() *hir.CrateDefs {
	file, diags := parser.ParseFile(c.opts.Files, c.file)
	c.bag.Extend(diags)
	if file != nil {
		c.declare(file)
		c.resolveImports(file.Uses)
		c.resolveStructs()
		c.resolveSignatures()
		if id, ok := c.defs.Top.Funcs["main"]; ok {
			c.defs.Main = id
		}
		c.checkBodies()
		c.reportUnusedImports()
		c.validateEntryPoints()
	}
	c.bag.Sort()
	c.defs.Diagnostics = slices.Clone(c.bag.Items())
	c.opts.Defs.AddCrate(c.defs)
	return c.defs
}

func (c *collector) errorf(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(c.reporter, code, sp, msg)
}

func (c *collector) warnf(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportWarning(c.reporter, code, sp, msg)
}

// lookupFunc resolves an unqualified function name as seen from contract
// (nil outside contracts): contract items first, then the crate's top level,
// then imports.
func (c *collector) lookupFunc(name string, contract *hir.Contract) (hir.FuncID, bool) {
	if contract != nil {
		if id, ok := contract.Scope.Funcs[name]; ok {
			return id, true
		}
	}
	if id, ok := c.defs.Top.Funcs[name]; ok {
		return id, true
	}
	if imp, ok := c.defs.Imports[name]; ok && imp.Func.IsValid() {
		c.usedImports[name] = true
		return imp.Func, true
	}
	return hir.NoFuncID, false
}

// lookupStruct resolves an unqualified struct name like lookupFunc.
func (c *collector) lookupStruct(name string, contract *hir.Contract) (hir.StructID, bool) {
	if contract != nil {
		if id, ok := contract.Scope.Structs[name]; ok {
			return id, true
		}
	}
	if id, ok := c.defs.Top.Structs[name]; ok {
		return id, true
	}
	if imp, ok := c.defs.Imports[name]; ok && imp.Struct.IsValid() {
		c.usedImports[name] = true
		return imp.Struct, true
	}
	return hir.NoStructID, false
}

// dependency returns the collected definitions of the dependency bound to
// name on the crate's graph edges.
func (c *collector) dependency(name ast.Ident) (*hir.CrateDefs, bool) {
	id, ok := c.opts.Graph.DepByName(c.crate, dag.CrateName(name.Name))
	if !ok {
		c.errorf(diag.ResUnknownDependency, name.Span, "unknown dependency `"+name.Name+"`").Emit()
		return nil, false
	}
	defs, ok := c.opts.Defs.Crate(id)
	return defs, ok
}

// structType returns the resolved type of a struct, resolving it first when
// it belongs to this crate and has not been resolved yet.
func (c *collector) structType(id hir.StructID, use source.Span) *types.Type {
	s := c.opts.Defs.Struct(id)
	if p, ok := c.structs[id]; ok && p.state != structDone {
		if p.state == structResolving {
			c.errorf(diag.TypMismatch, use, "struct `"+s.Name+"` contains itself").
				WithNote(s.Span, "defined here").Emit()
			return types.Invalid()
		}
		c.resolveStruct(id)
	}
	if s.Type == nil {
		return types.Invalid()
	}
	return s.Type
}
