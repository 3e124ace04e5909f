package sema

import (
	"strconv"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

const (
	attrEvent    = "event"
	attrInternal = "internal"
)

// declare registers every item of file so that bodies can refer to items
// declared later in the file.
func (c *collector) declare(file *ast.File) {
	for _, s := range file.Structs {
		c.declareStruct(s, nil, &c.defs.Top)
	}
	for _, f := range file.Funcs {
		c.declareFunc(f, nil, &c.defs.Top)
	}
	seen := make(map[string]*ast.Contract)
	for _, decl := range file.Contracts {
		if prev, dup := seen[decl.Name.Name]; dup {
			c.errorf(diag.ResDuplicateDefinition, decl.Name.Span, "contract `"+decl.Name.Name+"` is defined more than once").
				WithNote(prev.Name.Span, "first defined here").Emit()
			continue
		}
		seen[decl.Name.Name] = decl
		c.declareContract(decl)
	}
}

func (c *collector) declareContract(decl *ast.Contract) {
	for _, a := range decl.Attrs {
		c.errorf(diag.SynBadAttribute, a.Name.Span, "unknown contract attribute `"+a.Name.Name+"`").Emit()
	}
	id := c.opts.Defs.AddContract(hir.Contract{
		Name:  decl.Name.Name,
		Crate: c.crate,
		Scope: hir.NewScope(),
		Span:  decl.Span,
	})
	contract := c.opts.Defs.Contract(id)
	c.defs.Contracts = append(c.defs.Contracts, id)

	for _, s := range decl.Structs {
		if sid, ok := c.declareStruct(s, contract, &contract.Scope); ok {
			contract.Structs = append(contract.Structs, sid)
		}
	}
	for _, f := range decl.Funcs {
		if fid, ok := c.declareFunc(f, contract, &contract.Scope); ok {
			contract.Funcs = append(contract.Funcs, fid)
		}
	}
	for _, nested := range decl.Nested {
		c.errorf(diag.ResNestedContract, nested.Name.Span, "contract `"+nested.Name.Name+"` cannot be declared inside contract `"+decl.Name.Name+"`").Emit()
	}
	for _, u := range decl.Uses {
		c.errorf(diag.ResNestedContract, u.Span, "use declarations are only allowed at the top level").Emit()
	}
}

func (c *collector) declareStruct(decl *ast.Struct, contract *hir.Contract, scope *hir.Scope) (hir.StructID, bool) {
	name := decl.Name.Name
	if prev, dup := scope.Structs[name]; dup {
		c.duplicate(name, decl.Name.Span, c.opts.Defs.Struct(prev).Span)
		return hir.NoStructID, false
	}
	s := hir.Struct{
		Name:  name,
		Crate: c.crate,
		Span:  decl.Name.Span,
	}
	if contract != nil {
		s.Contract = contract.ID
	}
	for _, a := range decl.Attrs {
		switch {
		case a.Name.Name == attrEvent && contract != nil:
			s.IsEvent = true
		case a.Name.Name == attrEvent:
			c.errorf(diag.SynBadAttribute, a.Name.Span, "#[event] is only allowed on structs inside a contract").Emit()
		default:
			c.errorf(diag.SynBadAttribute, a.Name.Span, "unknown struct attribute `"+a.Name.Name+"`").Emit()
		}
	}
	id := c.opts.Defs.AddStruct(s)
	scope.Structs[name] = id
	c.structs[id] = &pendingStruct{decl: decl, contract: contract}
	c.structOrder = append(c.structOrder, id)
	return id, true
}

func (c *collector) declareFunc(decl *ast.Func, contract *hir.Contract, scope *hir.Scope) (hir.FuncID, bool) {
	name := decl.Name.Name
	if prev, dup := scope.Funcs[name]; dup {
		c.duplicate(name, decl.Name.Span, c.opts.Defs.Func(prev).NameSpan)
		return hir.NoFuncID, false
	}
	f := hir.Func{
		Name:          name,
		Crate:         c.crate,
		Unconstrained: decl.Has(ast.ModUnconstrained),
		Span:          decl.Span,
		NameSpan:      decl.Name.Span,
	}
	if contract != nil {
		f.Contract = contract.ID
	}

	switch {
	case decl.Has(ast.ModOpen) && decl.Has(ast.ModSecret):
		c.errorf(diag.SynBadAttribute, decl.Name.Span, "function `"+name+"` cannot be both open and secret").Emit()
	case (decl.Has(ast.ModOpen) || decl.Has(ast.ModSecret)) && contract == nil:
		c.errorf(diag.SynBadAttribute, decl.Name.Span, "open and secret are only allowed on contract functions").Emit()
	case decl.Has(ast.ModOpen):
		f.Entry = hir.EntryOpen
	case decl.Has(ast.ModSecret):
		f.Entry = hir.EntrySecret
	}
	for _, a := range decl.Attrs {
		switch {
		case a.Name.Name == attrInternal && contract != nil:
			f.Internal = true
		case a.Name.Name == attrInternal:
			c.errorf(diag.SynBadAttribute, a.Name.Span, "#[internal] is only allowed on contract functions").Emit()
		default:
			c.errorf(diag.SynBadAttribute, a.Name.Span, "unknown function attribute `"+a.Name.Name+"`").Emit()
		}
	}

	id := c.opts.Defs.AddFunc(f)
	scope.Funcs[name] = id
	c.defs.Funcs = append(c.defs.Funcs, id)
	c.funcs = append(c.funcs, pendingFunc{id: id, decl: decl, contract: contract})
	return id, true
}

func (c *collector) duplicate(name string, at, prev source.Span) {
	c.errorf(diag.ResDuplicateDefinition, at, "`"+name+"` is defined more than once").
		WithNote(prev, "first defined here").Emit()
}

// resolveImports binds `use dep::item;` declarations.
func (c *collector) resolveImports(uses []*ast.Use) {
	for _, u := range uses {
		if len(u.Path) != 2 {
			c.errorf(diag.ResUnresolvedImport, u.Span, "imports must have the form `dependency::item`").Emit()
			continue
		}
		dep, item := u.Path[0], u.Path[1]
		defs, ok := c.dependency(dep)
		if !ok {
			continue
		}
		imp := hir.Import{Name: item.Name, Span: item.Span}
		if id, ok := defs.Top.Funcs[item.Name]; ok {
			imp.Func = id
		}
		if id, ok := defs.Top.Structs[item.Name]; ok {
			imp.Struct = id
		}
		if !imp.Func.IsValid() && !imp.Struct.IsValid() {
			c.errorf(diag.ResUnresolvedImport, item.Span, "cannot find `"+item.Name+"` in dependency `"+dep.Name+"`").Emit()
			continue
		}
		if prev, dup := c.defs.Imports[item.Name]; dup {
			c.duplicate(item.Name, item.Span, prev.Span)
			continue
		}
		if c.shadowsTopLevel(imp) {
			c.errorf(diag.ResDuplicateDefinition, item.Span, "import `"+item.Name+"` conflicts with a definition of this crate").Emit()
			continue
		}
		c.defs.Imports[item.Name] = imp
	}
}

func (c *collector) shadowsTopLevel(imp hir.Import) bool {
	if _, ok := c.defs.Top.Funcs[imp.Name]; ok && imp.Func.IsValid() {
		return true
	}
	if _, ok := c.defs.Top.Structs[imp.Name]; ok && imp.Struct.IsValid() {
		return true
	}
	return false
}

func (c *collector) reportUnusedImports() {
	for _, name := range sortedImportNames(c.defs.Imports) {
		if c.usedImports[name] {
			continue
		}
		c.warnf(diag.ResUnusedImport, c.defs.Imports[name].Span, "unused import `"+name+"`").Emit()
	}
}

func (c *collector) resolveStructs() {
	for _, id := range c.structOrder {
		c.resolveStruct(id)
	}
}

func (c *collector) resolveStruct(id hir.StructID) {
	p := c.structs[id]
	if p.state != structPending {
		return
	}
	p.state = structResolving
	s := c.opts.Defs.Struct(id)
	env := typeEnv{contract: p.contract}
	fields := make([]types.Field, 0, len(p.decl.Fields))
	seen := make(map[string]bool, len(p.decl.Fields))
	for _, fd := range p.decl.Fields {
		if seen[fd.Name.Name] {
			c.errorf(diag.ResDuplicateDefinition, fd.Name.Span, "field `"+fd.Name.Name+"` is declared more than once").Emit()
			continue
		}
		seen[fd.Name.Name] = true
		fields = append(fields, types.Field{Name: fd.Name.Name, Type: c.resolveType(fd.Type, env)})
	}
	s.Type = types.Struct(s.Name, fields)
	p.state = structDone
}

// typeEnv is what a written type may refer to besides items.
type typeEnv struct {
	contract *hir.Contract
	generics map[string]hir.Generic
}

func (c *collector) resolveType(te *ast.TypeExpr, env typeEnv) *types.Type {
	if te == nil {
		return types.Unit()
	}
	if te.IsArray() {
		elem := c.resolveType(te.Elem, env)
		n, ok := c.resolveLength(te.Len, env)
		if !ok {
			return types.Invalid()
		}
		return types.Array(elem, n)
	}
	name := te.Name.Name
	switch name {
	case "Field":
		return types.FieldT()
	case "bool":
		return types.Bool()
	}
	if w, ok := types.ParseUint(name); ok {
		return types.Uint(w)
	}
	if g, ok := env.generics[name]; ok {
		if g.Numeric {
			c.errorf(diag.TypNotNumericGeneric, te.Span, "numeric generic `"+name+"` cannot be used as a type").Emit()
			return types.Invalid()
		}
		return types.Param(name)
	}
	if id, ok := c.lookupStruct(name, env.contract); ok {
		return c.structType(id, te.Span)
	}
	c.errorf(diag.ResUnknownType, te.Span, "unknown type `"+name+"`").Emit()
	return types.Invalid()
}

func (c *collector) resolveLength(b *ast.Bound, env typeEnv) (types.Length, bool) {
	if b.Int != "" {
		v, err := parseUint64(b.Int)
		if err != nil {
			c.errorf(diag.SynInvalidLiteral, b.Span, "invalid array length "+strconv.Quote(b.Int)).Emit()
			return types.Length{}, false
		}
		return types.Length{Value: v}, true
	}
	if g, ok := env.generics[b.Name.Name]; ok && g.Numeric {
		return types.Length{Param: g.Name}, true
	}
	c.errorf(diag.TypNotNumericGeneric, b.Span, "`"+b.Name.Name+"` is not a numeric generic of this function").Emit()
	return types.Length{}, false
}

func (c *collector) resolveSignatures() {
	for _, p := range c.funcs {
		c.resolveSignature(p)
	}
}

func (c *collector) resolveSignature(p pendingFunc) {
	f := c.opts.Defs.Func(p.id)
	decl := p.decl
	numeric := numericGenerics(decl)
	env := typeEnv{contract: p.contract, generics: make(map[string]hir.Generic, len(decl.Generics))}
	for _, g := range decl.Generics {
		if _, dup := env.generics[g.Name]; dup {
			c.errorf(diag.ResDuplicateDefinition, g.Span, "generic `"+g.Name+"` is declared more than once").Emit()
			continue
		}
		gen := hir.Generic{Name: g.Name, Numeric: numeric[g.Name]}
		env.generics[g.Name] = gen
		f.Generics = append(f.Generics, gen)
	}

	seen := make(map[string]source.Span, len(decl.Params))
	for _, param := range decl.Params {
		name := param.Name.Name
		if prev, dup := seen[name]; dup {
			c.duplicate(name, param.Name.Span, prev)
			continue
		}
		seen[name] = param.Name.Span
		t := c.resolveType(param.Type, env)
		vis := hir.Private
		if param.Pub {
			vis = hir.Public
		}
		local := f.AddLocal(hir.Local{Name: name, Type: t, Param: true, Span: param.Name.Span})
		f.Params = append(f.Params, hir.Param{Local: local, Name: name, Type: t, Vis: vis, Span: param.Name.Span})
	}
	f.Return = c.resolveType(decl.Return, env)
	if decl.ReturnPub {
		f.ReturnVis = hir.Public
	}
}

// numericGenerics returns the generics used as array lengths in the
// signature of decl.
func numericGenerics(decl *ast.Func) map[string]bool {
	out := make(map[string]bool)
	var walk func(te *ast.TypeExpr)
	walk = func(te *ast.TypeExpr) {
		if te == nil || !te.IsArray() {
			return
		}
		if te.Len != nil && te.Len.Int == "" {
			out[te.Len.Name.Name] = true
		}
		walk(te.Elem)
	}
	for _, p := range decl.Params {
		walk(p.Type)
	}
	walk(decl.Return)
	return out
}

// validateEntryPoints rejects generic functions that would have to be
// compiled on their own.
func (c *collector) validateEntryPoints() {
	for _, id := range c.defs.Funcs {
		f := c.opts.Defs.Func(id)
		if !f.IsGeneric() {
			continue
		}
		switch {
		case id == c.defs.Main:
			c.errorf(diag.TypGenericMismatch, f.NameSpan, "`main` cannot be generic").Emit()
		case f.IsEntryPoint():
			c.errorf(diag.TypGenericMismatch, f.NameSpan, "contract entry point `"+f.Name+"` cannot be generic").Emit()
		}
	}
}
