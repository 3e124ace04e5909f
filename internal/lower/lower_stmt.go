package lower

import (
	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/mono"
	"github.com/pryimak2/noir/internal/types"
)

func (l *lowerer) block(b *mono.Block) (value, error) {
	for _, s := range b.Stmts {
		if err := l.stmt(s); err != nil {
			return value{}, err
		}
	}
	if b.Tail == nil {
		return value{typ: types.Unit()}, nil
	}
	return l.expr(b.Tail)
}

func (l *lowerer) stmt(s *mono.Stmt) error {
	prev := l.span
	l.span = s.Span
	defer func() { l.span = prev }()

	switch s.Kind {
	case hir.StmtLet, hir.StmtAssign:
		v, err := l.expr(s.Value)
		if err != nil {
			return err
		}
		l.top().locals[s.Local] = v
	case hir.StmtAssert:
		return l.assert(s)
	case hir.StmtFor:
		for i := s.Lo; i < s.Hi; i++ {
			l.top().locals[s.Local] = value{typ: types.FieldT(), elems: []circuit.Expression{circuit.ConstUint64(i)}}
			if _, err := l.block(s.Body); err != nil {
				return err
			}
		}
	case hir.StmtExpr:
		_, err := l.expr(s.Value)
		return err
	}
	return nil
}

func (l *lowerer) assert(s *mono.Stmt) error {
	cond := s.Value
	if cond.Kind == hir.ExprBinary {
		switch cond.Op {
		case "==":
			a, b, err := l.operands(cond)
			if err != nil {
				return err
			}
			return l.assertZero(circuit.Sub(a.scalar(), b.scalar()), s.Msg)
		case "<", "<=", ">", ">=":
			if cond.Args[0].Type.IsInteger() {
				return l.assertOrdering(cond, s.Msg)
			}
		}
	}
	v, err := l.expr(cond)
	if err != nil {
		return err
	}
	return l.assertZero(circuit.Sub(v.scalar(), circuit.ConstUint64(1)), s.Msg)
}

// assertZero constrains e to zero, folding the assertion when e is constant.
func (l *lowerer) assertZero(e circuit.Expression, msg string) error {
	if e.IsConst() {
		if e.IsZero() {
			l.warn(diag.CirAlwaysTrue, "assertion is always true")
			return nil
		}
		return l.assertFailed(msg)
	}
	l.emit(circuit.AssertZero(e))
	return nil
}

func (l *lowerer) assertFailed(msg string) error {
	if msg == "" {
		return l.errorf(diag.CirAssertFailed, "assertion is always false")
	}
	return l.errorf(diag.CirAssertFailed, "assertion is always false: %s", msg)
}

// assertOrdering checks a comparison of integers of width w by range
// checking the difference that is non-negative exactly when it holds.
func (l *lowerer) assertOrdering(cond *mono.Expr, msg string) error {
	av, bv, err := l.operands(cond)
	if err != nil {
		return err
	}
	a, b := av.scalar(), bv.scalar()
	one := circuit.ConstUint64(1)
	var d circuit.Expression
	switch cond.Op {
	case "<":
		d = circuit.Sub(circuit.Sub(b, a), one)
	case "<=":
		d = circuit.Sub(b, a)
	case ">":
		d = circuit.Sub(circuit.Sub(a, b), one)
	default:
		d = circuit.Sub(a, b)
	}
	width := int(cond.Args[0].Type.Width)
	if d.IsConst() {
		if d.Const.BitLen() <= width {
			l.warn(diag.CirAlwaysTrue, "assertion is always true")
			return nil
		}
		return l.assertFailed(msg)
	}
	l.emit(circuit.Range(l.witness(d), uint32(width)))
	return nil
}
