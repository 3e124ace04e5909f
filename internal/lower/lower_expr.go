package lower

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/mono"
	"github.com/pryimak2/noir/internal/types"
)

func (l *lowerer) expr(e *mono.Expr) (value, error) {
	prev := l.span
	l.span = e.Span
	defer func() { l.span = prev }()

	switch e.Kind {
	case hir.ExprLit:
		c, err := l.literal(e.Value)
		if err != nil {
			return value{}, err
		}
		return value{typ: e.Type, elems: []circuit.Expression{c}}, nil
	case hir.ExprBool:
		return boolValue(e.Bool), nil
	case hir.ExprLocal:
		v, ok := l.top().locals[e.Local]
		if !ok {
			return value{}, l.errorf(diag.CirUnsupported, "local %s is read before it is assigned", l.top().fn.LocalName(e.Local))
		}
		return v, nil
	case hir.ExprCall:
		return l.call(e)
	case hir.ExprStruct, hir.ExprArray:
		out := value{typ: e.Type}
		for _, a := range e.Args {
			v, err := l.expr(a)
			if err != nil {
				return value{}, err
			}
			out.elems = append(out.elems, v.elems...)
		}
		return out, nil
	case hir.ExprField:
		return l.field(e)
	case hir.ExprIndex:
		return l.index(e)
	case hir.ExprUnary:
		return l.unary(e)
	case hir.ExprBinary:
		return l.binary(e)
	case hir.ExprBlock:
		return l.block(e.Block)
	}
	return value{}, l.errorf(diag.CirUnsupported, "cannot lower %s expression", e.Kind)
}

func (l *lowerer) literal(text string) (circuit.Expression, error) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return circuit.Expression{}, l.errorf(diag.CirUnsupported, "malformed literal %q", text)
	}
	var c fr.Element
	c.SetBigInt(n)
	return circuit.Const(c), nil
}

func boolValue(b bool) value {
	var v uint64
	if b {
		v = 1
	}
	return value{typ: types.Bool(), elems: []circuit.Expression{circuit.ConstUint64(v)}}
}

func (l *lowerer) call(e *mono.Expr) (value, error) {
	args := make([]value, len(e.Args))
	for i, a := range e.Args {
		v, err := l.expr(a)
		if err != nil {
			return value{}, err
		}
		args[i] = v
	}
	callee := l.prog.Functions[e.Func]
	if callee.Unconstrained {
		var inputs []circuit.Expression
		for _, a := range args {
			inputs = append(inputs, a.elems...)
		}
		out := value{typ: callee.Return}
		for _, w := range l.brillig(callee, inputs) {
			out.elems = append(out.elems, circuit.FromWitness(w))
		}
		return out, nil
	}
	if l.active[e.Func] {
		return value{}, l.errorf(diag.CirRecursion, "function %s calls itself recursively", callee.Name)
	}

	f := &frame{fn: callee, ref: e.Func, callSite: e.Span, locals: make(map[hir.LocalID]value, len(callee.Locals))}
	for i, p := range callee.Params {
		f.locals[p.Local] = args[i]
	}
	l.frames = append(l.frames, f)
	l.active[e.Func] = true
	defer func() {
		l.frames = l.frames[:len(l.frames)-1]
		delete(l.active, e.Func)
	}()
	return l.block(callee.Body)
}

func (l *lowerer) field(e *mono.Expr) (value, error) {
	base, err := l.expr(e.Args[0])
	if err != nil {
		return value{}, err
	}
	var off uint64
	fields := e.Args[0].Type.Fields
	for _, f := range fields[:e.Index] {
		off += f.Type.FlatSize()
	}
	size := fields[e.Index].Type.FlatSize()
	return value{typ: e.Type, elems: base.elems[off : off+size]}, nil
}

func (l *lowerer) index(e *mono.Expr) (value, error) {
	base, err := l.expr(e.Args[0])
	if err != nil {
		return value{}, err
	}
	idx, err := l.expr(e.Args[1])
	if err != nil {
		return value{}, err
	}
	i := idx.scalar()
	if !i.IsConst() {
		return value{}, l.errorf(diag.CirDynamicIndex, "array index must be known at compile time")
	}
	n := e.Args[0].Type.Len.Value
	if !i.Const.IsUint64() || i.Const.Uint64() >= n {
		return value{}, l.errorf(diag.CirOutOfBounds, "index %s is out of bounds for an array of length %d", i.Const.String(), n)
	}
	size := e.Type.FlatSize()
	off := i.Const.Uint64() * size
	return value{typ: e.Type, elems: base.elems[off : off+size]}, nil
}
