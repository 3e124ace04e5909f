package sema

import (
	"strings"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

// fnChecker type checks one function body.
type fnChecker struct {
	c        *collector
	fn       *hir.Func
	contract *hir.Contract
	generics map[string]hir.Generic
	scopes   []map[string]hir.LocalID
	used     map[hir.LocalID]bool
}

func (c *collector) checkBodies() {
	for _, p := range c.funcs {
		c.checkBody(p)
	}
}

func (c *collector) checkBody(p pendingFunc) {
	f := c.opts.Defs.Func(p.id)
	fc := &fnChecker{
		c:        c,
		fn:       f,
		contract: p.contract,
		generics: make(map[string]hir.Generic, len(f.Generics)),
		used:     make(map[hir.LocalID]bool),
	}
	for _, g := range f.Generics {
		fc.generics[g.Name] = g
	}
	fc.push()
	for _, param := range f.Params {
		fc.declare(param.Name, param.Local)
	}
	body := fc.block(p.decl.Body, f.Return)
	fc.pop()
	f.Body = body

	if !types.Equal(f.Return, body.Type) {
		at := p.decl.Name.Span
		if p.decl.Body.Tail != nil {
			at = p.decl.Body.Tail.ExprSpan()
		}
		fc.mismatch(at, f.Return, body.Type)
	}
	fc.reportUnused()
}

func (fc *fnChecker) push() {
	fc.scopes = append(fc.scopes, make(map[string]hir.LocalID))
}

func (fc *fnChecker) pop() {
	fc.scopes = fc.scopes[:len(fc.scopes)-1]
}

func (fc *fnChecker) declare(name string, id hir.LocalID) {
	fc.scopes[len(fc.scopes)-1][name] = id
}

func (fc *fnChecker) lookupLocal(name string) (hir.LocalID, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if id, ok := fc.scopes[i][name]; ok {
			return id, true
		}
	}
	return hir.NoLocalID, false
}

func (fc *fnChecker) reportUnused() {
	for i, l := range fc.fn.Locals {
		if l.Param || strings.HasPrefix(l.Name, "_") || fc.used[hir.LocalID(i+1)] { // #nosec G115 -- local count fits
			continue
		}
		fc.c.warnf(diag.ResUnusedVariable, l.Span, "unused variable `"+l.Name+"`").Emit()
	}
}

func (fc *fnChecker) mismatch(at source.Span, want, got *types.Type) {
	fc.c.errorf(diag.TypMismatch, at, "expected "+want.String()+", found "+got.String()).Emit()
}

func (fc *fnChecker) block(b *ast.Block, hint *types.Type) *hir.Block {
	fc.push()
	defer fc.pop()
	out := &hir.Block{Span: b.Span, Type: types.Unit()}
	for _, s := range b.Stmts {
		if st := fc.stmt(s); st != nil {
			out.Stmts = append(out.Stmts, st)
		}
	}
	if b.Tail != nil {
		out.Tail = fc.expr(b.Tail, hint)
		out.Type = out.Tail.Type
	}
	return out
}

func (fc *fnChecker) stmt(s ast.Stmt) *hir.Stmt {
	switch s := s.(type) {
	case *ast.LetStmt:
		return fc.let(s)
	case *ast.AssignStmt:
		return fc.assign(s)
	case *ast.AssertStmt:
		cond := fc.expect(s.Cond, types.Bool())
		return &hir.Stmt{Kind: hir.StmtAssert, Value: cond, Msg: s.Msg, Span: s.Span}
	case *ast.ForStmt:
		return fc.forStmt(s)
	case *ast.ExprStmt:
		return &hir.Stmt{Kind: hir.StmtExpr, Value: fc.expr(s.X, nil), Span: s.Span}
	}
	return nil
}

func (fc *fnChecker) let(s *ast.LetStmt) *hir.Stmt {
	var (
		value *hir.Expr
		t     *types.Type
	)
	if s.Type != nil {
		t = fc.c.resolveType(s.Type, fc.typeEnv())
		value = fc.expect(s.Value, t)
	} else {
		value = fc.expr(s.Value, nil)
		t = value.Type
	}
	id := fc.fn.AddLocal(hir.Local{Name: s.Name.Name, Type: t, Mutable: s.Mut, Span: s.Name.Span})
	fc.declare(s.Name.Name, id)
	return &hir.Stmt{Kind: hir.StmtLet, Local: id, Value: value, Span: s.Span}
}

func (fc *fnChecker) assign(s *ast.AssignStmt) *hir.Stmt {
	id, ok := fc.lookupLocal(s.Target.Name)
	if !ok {
		fc.c.errorf(diag.ResUnresolvedName, s.Target.Span, "cannot find variable `"+s.Target.Name+"` in this scope").Emit()
		fc.expr(s.Value, nil)
		return nil
	}
	local := fc.fn.Local(id)
	if !local.Mutable {
		fc.c.errorf(diag.TypAssignImmutable, s.Target.Span, "cannot assign twice to immutable variable `"+s.Target.Name+"`").
			WithNote(local.Span, "declared here; consider `let mut`").Emit()
	}
	value := fc.expect(s.Value, local.Type)
	return &hir.Stmt{Kind: hir.StmtAssign, Local: id, Value: value, Span: s.Span}
}

func (fc *fnChecker) forStmt(s *ast.ForStmt) *hir.Stmt {
	lo, okLo := fc.loopBound(s.Lo)
	hi, okHi := fc.loopBound(s.Hi)
	fc.push()
	id := fc.fn.AddLocal(hir.Local{Name: s.Var.Name, Type: types.FieldT(), Span: s.Var.Span})
	fc.declare(s.Var.Name, id)
	body := fc.block(s.Body, nil)
	fc.pop()
	if !okLo || !okHi {
		return nil
	}
	return &hir.Stmt{Kind: hir.StmtFor, Local: id, Lo: lo, Hi: hi, Body: body, Span: s.Span}
}

// loopBound accepts integer literals and numeric generics.
func (fc *fnChecker) loopBound(b *ast.Bound) (types.Length, bool) {
	return fc.c.resolveLength(b, fc.typeEnv())
}

func (fc *fnChecker) typeEnv() typeEnv {
	return typeEnv{contract: fc.contract, generics: fc.generics}
}
