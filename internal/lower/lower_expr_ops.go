package lower

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/mono"
)

func (l *lowerer) unary(e *mono.Expr) (value, error) {
	x, err := l.expr(e.Args[0])
	if err != nil {
		return value{}, err
	}
	switch e.Op {
	case "!":
		return value{typ: e.Type, elems: []circuit.Expression{circuit.Sub(circuit.ConstUint64(1), x.scalar())}}, nil
	case "-":
		return value{typ: e.Type, elems: []circuit.Expression{circuit.Neg(x.scalar())}}, nil
	}
	return value{}, l.errorf(diag.CirUnsupported, "unknown unary operator %s", e.Op)
}

func (l *lowerer) operands(e *mono.Expr) (value, value, error) {
	a, err := l.expr(e.Args[0])
	if err != nil {
		return value{}, value{}, err
	}
	b, err := l.expr(e.Args[1])
	if err != nil {
		return value{}, value{}, err
	}
	return a, b, nil
}

func (l *lowerer) binary(e *mono.Expr) (value, error) {
	switch e.Op {
	case "<", "<=", ">", ">=":
		return value{}, l.errorf(diag.CirUnsupported, "`%s` is only supported as the condition of an assert", e.Op)
	}
	av, bv, err := l.operands(e)
	if err != nil {
		return value{}, err
	}
	a, b := av.scalar(), bv.scalar()
	scalar := func(x circuit.Expression) (value, error) {
		return value{typ: e.Type, elems: []circuit.Expression{x}}, nil
	}

	switch e.Op {
	case "&":
		return scalar(l.mul(a, b))
	case "|":
		return scalar(circuit.Sub(circuit.Add(a, b), l.mul(a, b)))
	case "==":
		return scalar(l.isEqual(a, b))
	case "!=":
		return scalar(circuit.Sub(circuit.ConstUint64(1), l.isEqual(a, b)))
	case "+":
		return l.integer(e, circuit.Add(a, b))
	case "-":
		return l.integer(e, circuit.Sub(a, b))
	case "*":
		return l.integer(e, l.mul(a, b))
	case "/":
		if e.Type.IsInteger() {
			return l.intDiv(e, a, b)
		}
		q, err := l.fieldDiv(a, b)
		if err != nil {
			return value{}, err
		}
		return scalar(q)
	}
	return value{}, l.errorf(diag.CirUnsupported, "unknown binary operator %s", e.Op)
}

// integer range checks the result of integer arithmetic; Field results pass
// through.
func (l *lowerer) integer(e *mono.Expr, x circuit.Expression) (value, error) {
	t := e.Type
	if !t.IsInteger() {
		return value{typ: t, elems: []circuit.Expression{x}}, nil
	}
	if x.IsConst() {
		if x.Const.BitLen() > int(t.Width) {
			return value{}, l.errorf(diag.CirOverflow, "attempt to compute `%s` with overflow", e.Op)
		}
		return value{typ: t, elems: []circuit.Expression{x}}, nil
	}
	w := l.witness(x)
	l.rangeCheck(t, w)
	return value{typ: t, elems: []circuit.Expression{circuit.FromWitness(w)}}, nil
}

// isEqual returns a boolean expression that is 1 exactly when a == b:
//
//	eq = 1 - d*inv, d*eq = 0 with d = a - b and inv = 1/d
func (l *lowerer) isEqual(a, b circuit.Expression) circuit.Expression {
	d := circuit.Sub(a, b)
	if d.IsConst() {
		return boolValue(d.IsZero()).scalar()
	}
	if d.Degree() > 1 {
		d = l.materialize(d)
	}
	inv := l.c.NewWitness()
	l.emit(circuit.Invert(d, inv))
	eq := l.c.NewWitness()
	l.emit(circuit.AssertZero(circuit.Sub(
		circuit.Add(circuit.FromWitness(eq), l.mul(d, circuit.FromWitness(inv))),
		circuit.ConstUint64(1),
	)))
	l.emit(circuit.AssertZero(l.mul(d, circuit.FromWitness(eq))))
	return circuit.FromWitness(eq)
}

func (l *lowerer) fieldDiv(a, b circuit.Expression) (circuit.Expression, error) {
	if b.IsConst() {
		if b.Const.IsZero() {
			return circuit.Expression{}, l.errorf(diag.CirDivideByZero, "attempt to divide by zero")
		}
		var inv fr.Element
		inv.Inverse(&b.Const)
		return circuit.Scale(a, inv), nil
	}
	if b.Degree() > 1 {
		b = l.materialize(b)
	}
	inv := l.c.NewWitness()
	l.emit(circuit.Invert(b, inv))
	// b * inv = 1 also rules out b = 0
	l.emit(circuit.AssertZero(circuit.Sub(l.mul(b, circuit.FromWitness(inv)), circuit.ConstUint64(1))))
	return l.mul(a, circuit.FromWitness(inv)), nil
}

// intDiv folds division of integer constants. Division of unknown integers
// would need a quotient/remainder gadget and is rejected.
func (l *lowerer) intDiv(e *mono.Expr, a, b circuit.Expression) (value, error) {
	if !a.IsConst() || !b.IsConst() {
		return value{}, l.errorf(diag.CirUnsupported, "division of %s values is only supported on constants", e.Type)
	}
	if b.Const.IsZero() {
		return value{}, l.errorf(diag.CirDivideByZero, "attempt to divide by zero")
	}
	var x, y big.Int
	a.Const.BigInt(&x)
	b.Const.BigInt(&y)
	var q fr.Element
	q.SetBigInt(x.Quo(&x, &y))
	return value{typ: e.Type, elems: []circuit.Expression{circuit.Const(q)}}, nil
}
