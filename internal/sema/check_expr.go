package sema

import (
	"errors"
	"fmt"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

func invalidExpr(sp source.Span) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprInvalid, Type: types.Invalid(), Span: sp}
}

// expect checks e and reports a mismatch unless its type is want.
func (fc *fnChecker) expect(e ast.Expr, want *types.Type) *hir.Expr {
	out := fc.expr(e, want)
	if !types.Equal(want, out.Type) {
		fc.mismatch(e.ExprSpan(), want, out.Type)
	}
	return out
}

// expr checks e. hint is the type the context expects, if known; it decides
// the type of integer literals and is otherwise only advisory.
func (fc *fnChecker) expr(e ast.Expr, hint *types.Type) *hir.Expr {
	switch e := e.(type) {
	case *ast.IntLit:
		return fc.intLit(e, hint)
	case *ast.BoolLit:
		return &hir.Expr{Kind: hir.ExprBool, Type: types.Bool(), Bool: e.Value, Span: e.Span}
	case *ast.PathExpr:
		return fc.path(e)
	case *ast.CallExpr:
		return fc.call(e, hint)
	case *ast.StructLit:
		return fc.structLit(e)
	case *ast.ArrayLit:
		return fc.arrayLit(e, hint)
	case *ast.FieldExpr:
		return fc.field(e)
	case *ast.IndexExpr:
		return fc.index(e)
	case *ast.UnaryExpr:
		return fc.unary(e, hint)
	case *ast.BinaryExpr:
		return fc.binary(e, hint)
	case *ast.BlockExpr:
		b := fc.block(e.Block, hint)
		return &hir.Expr{Kind: hir.ExprBlock, Type: b.Type, Block: b, Span: e.Block.Span}
	}
	return invalidExpr(e.ExprSpan())
}

func (fc *fnChecker) intLit(e *ast.IntLit, hint *types.Type) *hir.Expr {
	t := types.FieldT()
	if hint.IsInteger() {
		t = hint
	}
	v, err := parseIntLit(e.Value)
	if err != nil {
		fc.c.errorf(diag.SynInvalidLiteral, e.Span, "invalid integer literal `"+e.Value+"`").Emit()
		return invalidExpr(e.Span)
	}
	if !fitsType(v, t) {
		fc.c.errorf(diag.SynInvalidLiteral, e.Span, "literal `"+e.Value+"` does not fit in "+t.String()).Emit()
		return invalidExpr(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprLit, Type: t, Value: v.String(), Span: e.Span}
}

func (fc *fnChecker) path(e *ast.PathExpr) *hir.Expr {
	if len(e.Segments) != 1 {
		fc.c.errorf(diag.ResUnresolvedName, e.Span, "cannot find value `"+pathString(e)+"`").Emit()
		return invalidExpr(e.Span)
	}
	name := e.Segments[0].Name
	if id, ok := fc.lookupLocal(name); ok {
		fc.used[id] = true
		return &hir.Expr{Kind: hir.ExprLocal, Type: fc.fn.Local(id).Type, Local: id, Span: e.Span}
	}
	if g, ok := fc.generics[name]; ok {
		if !g.Numeric {
			fc.c.errorf(diag.TypNotNumericGeneric, e.Span, "generic `"+name+"` is not numeric and has no value").Emit()
			return invalidExpr(e.Span)
		}
		return &hir.Expr{Kind: hir.ExprGeneric, Type: types.FieldT(), Value: name, Span: e.Span}
	}
	if _, ok := fc.c.lookupFunc(name, fc.contract); ok {
		fc.c.errorf(diag.ResUnresolvedName, e.Span, "function `"+name+"` can only be called").Emit()
		return invalidExpr(e.Span)
	}
	fc.c.errorf(diag.ResUnresolvedName, e.Span, "cannot find value `"+name+"` in this scope").Emit()
	return invalidExpr(e.Span)
}

func pathString(e *ast.PathExpr) string {
	s := ""
	for i, seg := range e.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg.Name
	}
	return s
}

// callee resolves the function named by a call path.
func (fc *fnChecker) callee(p *ast.PathExpr) (hir.FuncID, bool) {
	switch len(p.Segments) {
	case 1:
		name := p.Segments[0].Name
		if id, ok := fc.c.lookupFunc(name, fc.contract); ok {
			return id, true
		}
		if _, ok := fc.lookupLocal(name); ok {
			fc.c.errorf(diag.TypNotAFunction, p.Span, "`"+name+"` is a variable, not a function").Emit()
			return hir.NoFuncID, false
		}
		fc.c.errorf(diag.ResUnresolvedName, p.Span, "cannot find function `"+name+"` in this scope").Emit()
	case 2:
		defs, ok := fc.c.dependency(p.Segments[0])
		if !ok {
			return hir.NoFuncID, false
		}
		if id, ok := defs.Top.Funcs[p.Segments[1].Name]; ok {
			return id, true
		}
		fc.c.errorf(diag.ResUnresolvedName, p.Span, "cannot find function `"+pathString(p)+"`").Emit()
	default:
		fc.c.errorf(diag.ResUnresolvedName, p.Span, "cannot find function `"+pathString(p)+"`").Emit()
	}
	return hir.NoFuncID, false
}

func (fc *fnChecker) call(e *ast.CallExpr, hint *types.Type) *hir.Expr {
	id, ok := fc.callee(e.Callee)
	if !ok {
		for _, a := range e.Args {
			fc.expr(a, nil)
		}
		return invalidExpr(e.Span)
	}
	callee := fc.c.opts.Defs.Func(id)
	if len(e.Args) != len(callee.Params) {
		fc.c.errorf(diag.TypArityMismatch, e.Span,
			fmt.Sprintf("function `%s` takes %d argument(s) but %d were supplied", callee.Name, len(callee.Params), len(e.Args))).
			WithNote(callee.NameSpan, "defined here").Emit()
		for _, a := range e.Args {
			fc.expr(a, nil)
		}
		return invalidExpr(e.Span)
	}

	bindings := make(types.Bindings, len(callee.Generics))
	for _, g := range callee.Generics {
		bindings[g.Name] = nil
	}
	args := make([]*hir.Expr, len(e.Args))
	for i, a := range e.Args {
		pt := callee.Params[i].Type
		var argHint *types.Type
		if sub := types.Subst(pt, bindings); sub.IsConcrete() || len(callee.Generics) == 0 {
			argHint = sub
		}
		args[i] = fc.expr(a, argHint)
		if err := types.Unify(pt, args[i].Type, bindings); err != nil {
			code := diag.TypMismatch
			var conflict *types.ConflictError
			if errors.As(err, &conflict) {
				code = diag.TypGenericMismatch
			}
			fc.c.errorf(code, a.ExprSpan(), err.Error()).Emit()
		}
	}
	if hint != nil && !allBound(bindings) {
		_ = types.Unify(callee.Return, hint, bindings)
	}
	generics := make([]*types.Type, len(callee.Generics))
	for i, g := range callee.Generics {
		t := bindings[g.Name]
		if t == nil {
			fc.c.errorf(diag.TypGenericMismatch, e.Span, "cannot infer generic `"+g.Name+"` of `"+callee.Name+"`").Emit()
			return invalidExpr(e.Span)
		}
		generics[i] = t
	}
	return &hir.Expr{
		Kind:     hir.ExprCall,
		Type:     types.Subst(callee.Return, bindings),
		Func:     id,
		Generics: generics,
		Args:     args,
		Span:     e.Span,
	}
}

func allBound(b types.Bindings) bool {
	for _, t := range b {
		if t == nil {
			return false
		}
	}
	return true
}

func (fc *fnChecker) structLit(e *ast.StructLit) *hir.Expr {
	id, ok := fc.c.lookupStruct(e.Name.Name, fc.contract)
	if !ok {
		fc.c.errorf(diag.ResUnknownType, e.Name.Span, "unknown struct `"+e.Name.Name+"`").Emit()
		for _, f := range e.Fields {
			fc.expr(f.Value, nil)
		}
		return invalidExpr(e.Span)
	}
	t := fc.c.structType(id, e.Name.Span)
	if t.IsInvalid() {
		return invalidExpr(e.Span)
	}
	args := make([]*hir.Expr, len(t.Fields))
	failed := false
	for _, init := range e.Fields {
		idx, ok := t.FieldIndex(init.Name.Name)
		switch {
		case !ok:
			fc.c.errorf(diag.TypUnknownField, init.Name.Span, "struct `"+t.Name+"` has no field `"+init.Name.Name+"`").Emit()
			fc.expr(init.Value, nil)
			failed = true
		case args[idx] != nil:
			fc.c.errorf(diag.ResDuplicateDefinition, init.Name.Span, "field `"+init.Name.Name+"` specified more than once").Emit()
			fc.expr(init.Value, nil)
			failed = true
		default:
			args[idx] = fc.expect(init.Value, t.Fields[idx].Type)
		}
	}
	for i, a := range args {
		if a == nil && !failed {
			fc.c.errorf(diag.TypMissingField, e.Span, "missing field `"+t.Fields[i].Name+"` in initializer of `"+t.Name+"`").Emit()
			failed = true
		}
	}
	if failed {
		return invalidExpr(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprStruct, Type: t, Args: args, Span: e.Span}
}

func (fc *fnChecker) arrayLit(e *ast.ArrayLit, hint *types.Type) *hir.Expr {
	var elemHint *types.Type
	if hint != nil && hint.Kind == types.KindArray {
		elemHint = hint.Elem
	}
	n := uint64(len(e.Elems))
	if n == 0 {
		elem := elemHint
		if elem == nil {
			elem = types.FieldT()
		}
		return &hir.Expr{Kind: hir.ExprArray, Type: types.Array(elem, types.Length{}), Span: e.Span}
	}
	args := make([]*hir.Expr, len(e.Elems))
	args[0] = fc.expr(e.Elems[0], elemHint)
	for i := 1; i < len(e.Elems); i++ {
		args[i] = fc.expect(e.Elems[i], args[0].Type)
	}
	return &hir.Expr{
		Kind: hir.ExprArray,
		Type: types.Array(args[0].Type, types.Length{Value: n}),
		Args: args,
		Span: e.Span,
	}
}

func (fc *fnChecker) field(e *ast.FieldExpr) *hir.Expr {
	x := fc.expr(e.X, nil)
	if x.Type.IsInvalid() {
		return invalidExpr(e.Span)
	}
	idx, ok := x.Type.FieldIndex(e.Field.Name)
	if !ok {
		fc.c.errorf(diag.TypUnknownField, e.Field.Span, "type "+x.Type.String()+" has no field `"+e.Field.Name+"`").Emit()
		return invalidExpr(e.Span)
	}
	return &hir.Expr{
		Kind:  hir.ExprField,
		Type:  x.Type.Fields[idx].Type,
		Index: idx,
		Args:  []*hir.Expr{x},
		Span:  e.Span,
	}
}

func (fc *fnChecker) index(e *ast.IndexExpr) *hir.Expr {
	x := fc.expr(e.X, nil)
	idx := fc.expr(e.Index, nil)
	if x.Type.IsInvalid() || idx.Type.IsInvalid() {
		return invalidExpr(e.Span)
	}
	if x.Type.Kind != types.KindArray {
		fc.c.errorf(diag.TypNotIndexable, e.X.ExprSpan(), "type "+x.Type.String()+" cannot be indexed").Emit()
		return invalidExpr(e.Span)
	}
	if !idx.Type.IsNumeric() {
		fc.c.errorf(diag.TypMismatch, e.Index.ExprSpan(), "array index must be numeric, found "+idx.Type.String()).Emit()
		return invalidExpr(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprIndex, Type: x.Type.Elem, Args: []*hir.Expr{x, idx}, Span: e.Span}
}

func (fc *fnChecker) unary(e *ast.UnaryExpr, hint *types.Type) *hir.Expr {
	switch e.Op {
	case ast.OpNot:
		x := fc.expect(e.X, types.Bool())
		return &hir.Expr{Kind: hir.ExprUnary, Type: types.Bool(), Op: string(e.Op), Args: []*hir.Expr{x}, Span: e.Span}
	case ast.OpNeg:
		x := fc.expr(e.X, hint)
		if !x.Type.IsInvalid() && x.Type.Kind != types.KindField {
			fc.c.errorf(diag.TypMismatch, e.Span, "cannot negate a value of type "+x.Type.String()).Emit()
			return invalidExpr(e.Span)
		}
		return &hir.Expr{Kind: hir.ExprUnary, Type: x.Type, Op: string(e.Op), Args: []*hir.Expr{x}, Span: e.Span}
	}
	return invalidExpr(e.Span)
}

func (fc *fnChecker) binary(e *ast.BinaryExpr, hint *types.Type) *hir.Expr {
	out := &hir.Expr{Kind: hir.ExprBinary, Op: string(e.Op), Span: e.Span, Type: types.Bool()}
	switch e.Op {
	case ast.OpOr, ast.OpAnd:
		out.Args = []*hir.Expr{fc.expect(e.L, types.Bool()), fc.expect(e.R, types.Bool())}
		return out
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if !hint.IsNumeric() {
			hint = nil
		}
		l, r := fc.operands(e, hint)
		if !fc.requireNumeric(e, l, r) {
			return invalidExpr(e.Span)
		}
		out.Args = []*hir.Expr{l, r}
		out.Type = l.Type
		return out
	case ast.OpEq, ast.OpNe:
		l, r := fc.operands(e, nil)
		if !fc.sameOperands(e, l, r) {
			return invalidExpr(e.Span)
		}
		if !isScalar(l.Type) {
			fc.c.errorf(diag.TypMismatch, e.Span, "values of type "+l.Type.String()+" cannot be compared").Emit()
			return invalidExpr(e.Span)
		}
		out.Args = []*hir.Expr{l, r}
		return out
	}
	// ordering
	l, r := fc.operands(e, nil)
	if !fc.sameOperands(e, l, r) {
		return invalidExpr(e.Span)
	}
	if !l.Type.IsInvalid() && !l.Type.IsInteger() {
		fc.c.errorf(diag.TypOrderingNonInt, e.Span, "`"+string(e.Op)+"` needs integer operands, found "+l.Type.String()).Emit()
		return invalidExpr(e.Span)
	}
	out.Args = []*hir.Expr{l, r}
	return out
}

// operands checks both sides of e. A literal side takes its type from the
// other side, so `1 + x` with x: u8 is a u8 addition.
func (fc *fnChecker) operands(e *ast.BinaryExpr, hint *types.Type) (l, r *hir.Expr) {
	if isLiteral(e.L) && !isLiteral(e.R) {
		r = fc.expr(e.R, hint)
		l = fc.expr(e.L, r.Type)
		return l, r
	}
	l = fc.expr(e.L, hint)
	return l, fc.expr(e.R, l.Type)
}

func (fc *fnChecker) sameOperands(e *ast.BinaryExpr, l, r *hir.Expr) bool {
	if l.Type.IsInvalid() || r.Type.IsInvalid() {
		return false
	}
	if !types.Equal(l.Type, r.Type) {
		fc.c.errorf(diag.TypMismatch, e.Span, "mismatched operand types "+l.Type.String()+" and "+r.Type.String()).Emit()
		return false
	}
	return true
}

func (fc *fnChecker) requireNumeric(e *ast.BinaryExpr, l, r *hir.Expr) bool {
	if !fc.sameOperands(e, l, r) {
		return false
	}
	if !l.Type.IsNumeric() {
		fc.c.errorf(diag.TypMismatch, e.Span, "`"+string(e.Op)+"` needs numeric operands, found "+l.Type.String()).Emit()
		return false
	}
	return true
}

func isLiteral(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.IntLit:
		return true
	case *ast.UnaryExpr:
		return e.Op == ast.OpNeg && isLiteral(e.X)
	}
	return false
}

func isScalar(t *types.Type) bool {
	switch t.Kind {
	case types.KindField, types.KindBool, types.KindUint:
		return true
	}
	return false
}
