package circuit

import (
	"fmt"
	"strings"
)

// OpcodeKind enumerates the opcode set.
type OpcodeKind uint8

const (
	// OpAssertZero constrains a quadratic expression to zero.
	OpAssertZero OpcodeKind = iota
	// OpRange constrains a witness to a number of bits.
	OpRange
	// OpInvert is a solver directive computing 1/x (0 for x = 0). It adds
	// no constraint by itself.
	OpInvert
	// OpBrillig runs an unconstrained function to compute outputs.
	OpBrillig
)

var opcodeKindNames = [...]string{
	OpAssertZero: "assert_zero",
	OpRange:      "range",
	OpInvert:     "invert",
	OpBrillig:    "brillig",
}

func (k OpcodeKind) String() string {
	if int(k) < len(opcodeKindNames) {
		return opcodeKindNames[k]
	}
	return fmt.Sprintf("OpcodeKind(%d)", k)
}

// RangeCheck constrains W < 2^Bits.
type RangeCheck struct {
	W    Witness `msgpack:"w"`
	Bits uint32  `msgpack:"bits"`
}

// InvertDirective assigns Result := 1/X.
type InvertDirective struct {
	X      Expression `msgpack:"x"`
	Result Witness    `msgpack:"out"`
}

// BrilligCall assigns Outputs from running Func on Inputs.
type BrilligCall struct {
	Func    string       `msgpack:"func"`
	Inputs  []Expression `msgpack:"inputs"`
	Outputs []Witness    `msgpack:"outputs"`
}

// Opcode is one instruction of a circuit. Exactly the payload matching Kind
// is set.
type Opcode struct {
	Kind    OpcodeKind       `msgpack:"k"`
	Expr    *Expression      `msgpack:"expr,omitempty"`
	Range   *RangeCheck      `msgpack:"range,omitempty"`
	Invert  *InvertDirective `msgpack:"invert,omitempty"`
	Brillig *BrilligCall     `msgpack:"brillig,omitempty"`
}

// AssertZero returns the opcode e == 0.
func AssertZero(e Expression) Opcode {
	return Opcode{Kind: OpAssertZero, Expr: &e}
}

// Range returns the opcode w < 2^bits.
func Range(w Witness, bits uint32) Opcode {
	return Opcode{Kind: OpRange, Range: &RangeCheck{W: w, Bits: bits}}
}

// Invert returns the directive result := 1/x.
func Invert(x Expression, result Witness) Opcode {
	return Opcode{Kind: OpInvert, Invert: &InvertDirective{X: x, Result: result}}
}

// Brillig returns an unconstrained call.
func Brillig(fn string, inputs []Expression, outputs []Witness) Opcode {
	return Opcode{Kind: OpBrillig, Brillig: &BrilligCall{Func: fn, Inputs: inputs, Outputs: outputs}}
}

// Witnesses returns the witnesses the opcode reads or writes.
func (op Opcode) Witnesses() []Witness {
	switch op.Kind {
	case OpAssertZero:
		return op.Expr.Witnesses()
	case OpRange:
		return []Witness{op.Range.W}
	case OpInvert:
		return append(op.Invert.X.Witnesses(), op.Invert.Result)
	case OpBrillig:
		var out []Witness
		for _, in := range op.Brillig.Inputs {
			out = append(out, in.Witnesses()...)
		}
		return append(out, op.Brillig.Outputs...)
	}
	return nil
}

func (op Opcode) String() string {
	switch op.Kind {
	case OpAssertZero:
		return op.Expr.String()
	case OpRange:
		return fmt.Sprintf("BLACKBOX::RANGE [(%s, num_bits: %d)]", op.Range.W, op.Range.Bits)
	case OpInvert:
		return fmt.Sprintf("DIR::INVERT (%s, out: %s)", op.Invert.X, op.Invert.Result)
	case OpBrillig:
		inputs := make([]string, len(op.Brillig.Inputs))
		for i, in := range op.Brillig.Inputs {
			inputs[i] = in.String()
		}
		return fmt.Sprintf("BRILLIG %s: inputs: [%s], outputs: %s",
			op.Brillig.Func, strings.Join(inputs, ", "), witnessList(op.Brillig.Outputs))
	}
	return op.Kind.String()
}

func witnessList(ws []Witness) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
