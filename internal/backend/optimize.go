package backend

import (
	"fmt"
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/driver"
)

// OptimizeCircuit rewrites c for lang and reports, for every opcode of the
// result, the index of the opcode of c it came from. c is not modified.
//
// Constant-zero assertions are dropped, range checks are merged per witness
// keeping the tightest bound, assertions with more than one product are split
// and, for PLONK, assertions wider than the language width are folded through
// intermediate witnesses.
func OptimizeCircuit(c *circuit.Circuit, lang Language, support OpcodeSupport) (*circuit.Circuit, []int, error) {
	if err := lang.Validate(); err != nil {
		return nil, nil, err
	}
	out := c.Clone()
	out.Opcodes = nil
	var origin []int

	bits := make(map[circuit.Witness]uint32)
	for _, op := range c.Opcodes {
		if op.Kind != circuit.OpRange {
			continue
		}
		if b, ok := bits[op.Range.W]; !ok || op.Range.Bits < b {
			bits[op.Range.W] = op.Range.Bits
		}
	}
	ranged := make(map[circuit.Witness]bool)

	emit := func(op circuit.Opcode, from int) {
		out.Opcodes = append(out.Opcodes, op)
		origin = append(origin, from)
	}
	for i, op := range c.Opcodes {
		switch op.Kind {
		case circuit.OpAssertZero:
			if op.Expr.IsZero() {
				continue
			}
			e := splitProducts(out, *op.Expr, func(extra circuit.Opcode) { emit(extra, i) })
			if lang.Kind == PLONKCSat {
				e = foldWidth(out, e, lang.Width, func(extra circuit.Opcode) { emit(extra, i) })
			}
			emit(circuit.AssertZero(e), i)
		case circuit.OpRange:
			w := op.Range.W
			if ranged[w] {
				continue
			}
			ranged[w] = true
			emit(circuit.Range(w, bits[w]), i)
		default:
			emit(op, i)
		}
	}

	for _, op := range out.Opcodes {
		if !support.IsOpcodeSupported(op) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedOpcode, op.Kind)
		}
	}
	log.Debugf("optimized for %s: %d -> %d opcode(s)", lang, len(c.Opcodes), len(out.Opcodes))
	return out, origin, nil
}

// splitProducts moves every product but the first into a fresh witness
// t = l * r, so e keeps at most one product.
func splitProducts(c *circuit.Circuit, e circuit.Expression, emit func(circuit.Opcode)) circuit.Expression {
	if len(e.Mul) <= 1 {
		return e
	}
	rest := e
	rest.Mul = e.Mul[:1:1]
	for _, m := range e.Mul[1:] {
		t := c.NewWitness()
		prod := circuit.Expression{Mul: []circuit.MulTerm{{Coeff: fr.One(), L: m.L, R: m.R}}}
		emit(circuit.AssertZero(circuit.Sub(prod, circuit.FromWitness(t))))
		rest = circuit.Add(rest, circuit.Scale(circuit.FromWitness(t), m.Coeff))
	}
	return rest
}

// foldWidth replaces groups of linear terms by intermediate witnesses until
// e mentions at most width witnesses. The witnesses of the product are never
// folded.
func foldWidth(c *circuit.Circuit, e circuit.Expression, width int, emit func(circuit.Opcode)) circuit.Expression {
	for e.Width() > width {
		var inMul []circuit.Witness
		for _, m := range e.Mul {
			inMul = append(inMul, m.L, m.R)
		}
		var group []circuit.LinearTerm
		for _, l := range e.Linear {
			if !slices.Contains(inMul, l.W) {
				group = append(group, l)
			}
			if len(group) == width-1 {
				break
			}
		}
		if len(group) < 2 {
			// cannot shrink further; width >= 3 keeps this unreachable
			return e
		}
		part := circuit.Expression{Linear: group}
		t := c.NewWitness()
		emit(circuit.AssertZero(circuit.Sub(part, circuit.FromWitness(t))))
		e = circuit.Add(circuit.Sub(e, part), circuit.FromWitness(t))
	}
	return e
}

// OptimizeProgram returns a copy of p optimized for b. p itself, which may be
// a cached artifact, is left untouched.
func (b *Backend) OptimizeProgram(p *driver.CompiledProgram) (*driver.CompiledProgram, error) {
	c, origin, err := OptimizeCircuit(p.Circuit, b.Language, b.Support)
	if err != nil {
		return nil, fmt.Errorf("optimize main: %w", err)
	}
	out := *p
	out.Circuit = c
	if p.Debug != nil {
		out.Debug = p.Debug.Remap(origin)
	}
	return &out, nil
}

// OptimizeContract returns a copy of contract with every function optimized
// for b.
func (b *Backend) OptimizeContract(contract *driver.CompiledContract) (*driver.CompiledContract, error) {
	out := *contract
	out.Functions = make([]driver.ContractFunction, len(contract.Functions))
	for i, f := range contract.Functions {
		c, origin, err := OptimizeCircuit(f.Circuit, b.Language, b.Support)
		if err != nil {
			return nil, fmt.Errorf("optimize %s::%s: %w", contract.Name, f.Name, err)
		}
		f.Circuit = c
		if f.Debug != nil {
			f.Debug = f.Debug.Remap(origin)
		}
		out.Functions[i] = f
	}
	return &out, nil
}
