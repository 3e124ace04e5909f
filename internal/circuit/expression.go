// Package circuit is the witness-indexed arithmetic circuit produced by
// lowering: quadratic AssertZero constraints, range checks, solver
// directives and calls into unconstrained code.
package circuit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Witness indexes a value of the witness vector. Index 0 is never assigned.
type Witness uint32

func (w Witness) String() string { return fmt.Sprintf("_%d", w) }

// MulTerm is Coeff * L * R.
type MulTerm struct {
	Coeff fr.Element `msgpack:"c"`
	L     Witness    `msgpack:"l"`
	R     Witness    `msgpack:"r"`
}

// LinearTerm is Coeff * W.
type LinearTerm struct {
	Coeff fr.Element `msgpack:"c"`
	W     Witness    `msgpack:"w"`
}

// Expression is a polynomial of degree at most two over witnesses. Terms are
// kept sorted and merged, so equal expressions have equal encodings.
type Expression struct {
	Mul    []MulTerm    `msgpack:"mul,omitempty"`
	Linear []LinearTerm `msgpack:"lin,omitempty"`
	Const  fr.Element   `msgpack:"q"`
}

// Const returns the constant expression c.
func Const(c fr.Element) Expression {
	return Expression{Const: c}
}

// ConstUint64 returns the constant expression v.
func ConstUint64(v uint64) Expression {
	var c fr.Element
	c.SetUint64(v)
	return Const(c)
}

// FromWitness returns the expression 1 * w.
func FromWitness(w Witness) Expression {
	return Expression{Linear: []LinearTerm{{Coeff: fr.One(), W: w}}}
}

// IsConst reports whether e mentions no witness.
func (e Expression) IsConst() bool {
	return len(e.Mul) == 0 && len(e.Linear) == 0
}

// IsZero reports whether e is the constant zero.
func (e Expression) IsZero() bool {
	return e.IsConst() && e.Const.IsZero()
}

// Degree is 0, 1 or 2.
func (e Expression) Degree() int {
	switch {
	case len(e.Mul) > 0:
		return 2
	case len(e.Linear) > 0:
		return 1
	}
	return 0
}

// AsWitness returns w when e is exactly 1 * w.
func (e Expression) AsWitness() (Witness, bool) {
	if len(e.Mul) == 0 && len(e.Linear) == 1 && e.Const.IsZero() && e.Linear[0].Coeff.IsOne() {
		return e.Linear[0].W, true
	}
	return 0, false
}

// Witnesses returns the distinct witnesses of e in increasing order.
func (e Expression) Witnesses() []Witness {
	var out []Witness
	for _, m := range e.Mul {
		out = append(out, m.L, m.R)
	}
	for _, l := range e.Linear {
		out = append(out, l.W)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Width is the number of distinct witnesses of e.
func (e Expression) Width() int {
	return len(e.Witnesses())
}

// Add returns a + b.
func Add(a, b Expression) Expression {
	out := Expression{
		Mul:    append(slices.Clone(a.Mul), b.Mul...),
		Linear: append(slices.Clone(a.Linear), b.Linear...),
	}
	out.Const.Add(&a.Const, &b.Const)
	return out.normalize()
}

// Scale returns k * e.
func Scale(e Expression, k fr.Element) Expression {
	out := Expression{
		Mul:    make([]MulTerm, len(e.Mul)),
		Linear: make([]LinearTerm, len(e.Linear)),
	}
	for i, m := range e.Mul {
		out.Mul[i] = MulTerm{L: m.L, R: m.R}
		out.Mul[i].Coeff.Mul(&m.Coeff, &k)
	}
	for i, l := range e.Linear {
		out.Linear[i] = LinearTerm{W: l.W}
		out.Linear[i].Coeff.Mul(&l.Coeff, &k)
	}
	out.Const.Mul(&e.Const, &k)
	return out.normalize()
}

// Neg returns -e.
func Neg(e Expression) Expression {
	var minusOne fr.Element
	minusOne.SetInt64(-1)
	return Scale(e, minusOne)
}

// Sub returns a - b.
func Sub(a, b Expression) Expression {
	return Add(a, Neg(b))
}

// Mul returns a * b when the product has degree at most two.
func Mul(a, b Expression) (Expression, bool) {
	switch {
	case a.IsConst():
		return Scale(b, a.Const), true
	case b.IsConst():
		return Scale(a, b.Const), true
	case a.Degree() > 1 || b.Degree() > 1:
		return Expression{}, false
	}
	var out Expression
	for _, x := range a.Linear {
		for _, y := range b.Linear {
			t := MulTerm{L: x.W, R: y.W}
			t.Coeff.Mul(&x.Coeff, &y.Coeff)
			out.Mul = append(out.Mul, t)
		}
	}
	for _, x := range a.Linear {
		t := LinearTerm{W: x.W}
		t.Coeff.Mul(&x.Coeff, &b.Const)
		out.Linear = append(out.Linear, t)
	}
	for _, y := range b.Linear {
		t := LinearTerm{W: y.W}
		t.Coeff.Mul(&y.Coeff, &a.Const)
		out.Linear = append(out.Linear, t)
	}
	out.Const.Mul(&a.Const, &b.Const)
	return out.normalize(), true
}

// normalize sorts and merges terms and drops zero coefficients.
func (e Expression) normalize() Expression {
	for i := range e.Mul {
		if e.Mul[i].L > e.Mul[i].R {
			e.Mul[i].L, e.Mul[i].R = e.Mul[i].R, e.Mul[i].L
		}
	}
	slices.SortStableFunc(e.Mul, func(x, y MulTerm) int {
		if c := cmp.Compare(x.L, y.L); c != 0 {
			return c
		}
		return cmp.Compare(x.R, y.R)
	})
	mul := e.Mul[:0]
	for _, m := range e.Mul {
		if n := len(mul); n > 0 && mul[n-1].L == m.L && mul[n-1].R == m.R {
			mul[n-1].Coeff.Add(&mul[n-1].Coeff, &m.Coeff)
			continue
		}
		mul = append(mul, m)
	}
	e.Mul = slices.DeleteFunc(mul, func(m MulTerm) bool { return m.Coeff.IsZero() })

	slices.SortStableFunc(e.Linear, func(x, y LinearTerm) int { return cmp.Compare(x.W, y.W) })
	lin := e.Linear[:0]
	for _, l := range e.Linear {
		if n := len(lin); n > 0 && lin[n-1].W == l.W {
			lin[n-1].Coeff.Add(&lin[n-1].Coeff, &l.Coeff)
			continue
		}
		lin = append(lin, l)
	}
	e.Linear = slices.DeleteFunc(lin, func(l LinearTerm) bool { return l.Coeff.IsZero() })
	if len(e.Mul) == 0 {
		e.Mul = nil
	}
	if len(e.Linear) == 0 {
		e.Linear = nil
	}
	return e
}

// Equal reports whether a and b are the same polynomial.
func Equal(a, b Expression) bool {
	return Sub(a, b).IsZero()
}

func (e Expression) String() string {
	var sb strings.Builder
	sb.WriteString("EXPR [ ")
	for _, m := range e.Mul {
		fmt.Fprintf(&sb, "(%s, %s, %s) ", m.Coeff.String(), m.L, m.R)
	}
	for _, l := range e.Linear {
		fmt.Fprintf(&sb, "(%s, %s) ", l.Coeff.String(), l.W)
	}
	sb.WriteString(e.Const.String())
	sb.WriteString(" ]")
	return sb.String()
}
