package lower

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimak2/noir/internal/abi"
	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/mono"
	"github.com/pryimak2/noir/internal/sema"
	"github.com/pryimak2/noir/internal/testkit"
)

func program(t *testing.T, src string) (*testkit.Session, *mono.Program) {
	t.Helper()
	s := testkit.NewSession(src)
	diags := sema.CollectDefs(sema.Options{Files: s.Files, Graph: s.Graph, Defs: s.Defs}, s.Root)
	require.False(t, diag.HasErrors(diags, false), "%v", diags)
	main, ok := s.Defs.MainFunction(s.Root)
	require.True(t, ok)
	p, err := mono.Monomorphize(s.Defs, main)
	require.NoError(t, err)
	return s, p
}

func lowered(t *testing.T, src string) *Result {
	t.Helper()
	_, p := program(t, src)
	res, err := CreateCircuit(p, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)
	return res
}

func kinds(c *circuit.Circuit) []circuit.OpcodeKind {
	out := make([]circuit.OpcodeKind, len(c.Opcodes))
	for i, op := range c.Opcodes {
		out[i] = op.Kind
	}
	return out
}

func TestLowerSimpleProgram(t *testing.T) {
	res := lowered(t, `fn main(x: Field, y: pub Field) -> pub Field { assert(x != y); x + y }`)
	c := res.Circuit

	assert.Equal(t, []circuit.Witness{1}, c.PrivateParams)
	assert.Equal(t, []circuit.Witness{2}, c.PublicParams)
	assert.Equal(t, []circuit.Witness{5}, c.ReturnValues)
	assert.Equal(t, circuit.Witness(5), c.CurrentWitness)
	assert.Equal(t, []circuit.OpcodeKind{
		circuit.OpInvert,     // inv = 1/(x-y)
		circuit.OpAssertZero, // eq = 1 - (x-y)*inv
		circuit.OpAssertZero, // (x-y)*eq = 0
		circuit.OpAssertZero, // assert(!eq)
		circuit.OpAssertZero, // return
	}, kinds(c))
	assert.Equal(t, "EXPR [ (1, _1) (1, _2) (-1, _5) 0 ]", c.Opcodes[4].String())

	require.Len(t, res.ABI.Parameters, 2)
	assert.Equal(t, abi.Private, res.ABI.Parameters[0].Visibility)
	assert.Equal(t, abi.Public, res.ABI.Parameters[1].Visibility)
	assert.Equal(t, abi.KindField, res.ABI.ReturnType.Kind)
	assert.Equal(t, abi.Public, res.ABI.ReturnVisibility)
	assert.Empty(t, res.Warnings)
	assert.Len(t, res.Debug.Locations, len(c.Opcodes))
}

func TestLowerRangeChecksParams(t *testing.T) {
	res := lowered(t, `fn main(a: u8, flags: pub [bool; 2]) -> pub u8 { a }`)
	c := res.Circuit
	assert.Equal(t, []circuit.Witness{1}, c.PrivateParams)
	assert.Equal(t, []circuit.Witness{2, 3}, c.PublicParams)
	require.Len(t, c.Opcodes, 4)
	assert.Equal(t, uint32(8), c.Opcodes[0].Range.Bits)
	assert.Equal(t, uint32(1), c.Opcodes[1].Range.Bits)
	assert.Equal(t, circuit.Witness(3), c.Opcodes[2].Range.W)
	assert.Equal(t, abi.KindArray, res.ABI.Parameters[1].Type.Kind)
}

func TestLowerIntegerArithmetic(t *testing.T) {
	res := lowered(t, `fn main(a: u16, b: u16) -> pub u16 { a * b + 1 }`)
	var bits []uint32
	for _, op := range res.Circuit.Opcodes {
		if op.Kind == circuit.OpRange {
			bits = append(bits, op.Range.Bits)
		}
	}
	// two params, the product and the sum
	assert.Equal(t, []uint32{16, 16, 16, 16}, bits)
}

func TestLowerOrderingInAssert(t *testing.T) {
	res := lowered(t, `fn main(a: u8, b: u8) { assert(a < b); }`)
	c := res.Circuit
	last := c.Opcodes[len(c.Opcodes)-1]
	require.Equal(t, circuit.OpRange, last.Kind)
	assert.Equal(t, uint32(8), last.Range.Bits)
	// the checked witness is b - a - 1
	def := c.Opcodes[len(c.Opcodes)-2]
	assert.Equal(t, "EXPR [ (-1, _1) (1, _2) (-1, _3) -1 ]", def.String())
	assert.Empty(t, c.ReturnValues)
	assert.Nil(t, res.ABI.ReturnType)
}

func TestLowerInlinesCalls(t *testing.T) {
	s, p := program(t, `
fn check(a: Field, b: Field) {
    assert(a == b, "mismatch");
}
fn main(x: Field, y: Field) -> pub Field {
    check(x, y);
    x
}
`)
	res, err := CreateCircuit(p, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)
	c := res.Circuit
	require.Len(t, c.Opcodes, 2)
	assert.Equal(t, "EXPR [ (1, _1) (-1, _2) 0 ]", c.Opcodes[0].String())

	stack, ok := res.Debug.Lookup(0)
	require.True(t, ok)
	require.Len(t, stack, 2)
	src := string(s.File("src/main.nr").Content)
	assert.Equal(t, "check(x, y)", src[stack[0].Start:stack[0].End])
	assert.Contains(t, src[stack[1].Start:stack[1].End], "assert(a == b")
}

func TestLowerBrillig(t *testing.T) {
	_, p := program(t, `
use std::inverse;
fn main(x: Field) -> pub Field { inverse(x) }
`)
	var out bytes.Buffer
	res, err := CreateCircuit(p, Options{ShowSSA: true, ShowBrillig: true, Out: &out})
	require.NoError(t, err)
	c := res.Circuit

	require.Equal(t, circuit.OpBrillig, c.Opcodes[0].Kind)
	assert.Equal(t, "inverse_hint", c.Opcodes[0].Brillig.Func)
	assert.Equal(t, []circuit.Witness{2}, c.Opcodes[0].Brillig.Outputs)
	// inv * x == 1
	assert.Equal(t, "EXPR [ (1, _1, _2) -1 ]", c.Opcodes[1].String())

	assert.Contains(t, out.String(), "fn f0 main(")
	assert.Contains(t, out.String(), "0: BRILLIG inverse_hint")
}

func TestLowerStructsAndArrays(t *testing.T) {
	res := lowered(t, `
struct P { x: Field, y: Field }
fn main(p: P, xs: [Field; 3]) -> pub Field {
    let q = P { x: p.y, y: xs[2] };
    let mut acc = 0;
    for i in 0..3 {
        acc = acc + xs[i];
    }
    q.x + q.y + acc
}
`)
	c := res.Circuit
	assert.Len(t, c.PrivateParams, 5)
	require.Len(t, c.Opcodes, 1)
	assert.Equal(t, "EXPR [ (1, _2) (1, _3) (1, _4) (2, _5) (-1, _6) 0 ]", c.Opcodes[0].String())
	assert.Equal(t, uint64(5), res.ABI.FieldCount())
}

func TestLowerFieldDivision(t *testing.T) {
	res := lowered(t, `fn main(x: Field, y: Field) -> pub Field { x / y + x / 2 }`)
	c := res.Circuit
	assert.Equal(t, circuit.OpInvert, c.Opcodes[0].Kind)
	// y * inv == 1
	assert.Equal(t, "EXPR [ (1, _2, _3) -1 ]", c.Opcodes[1].String())
}

func TestLowerAlwaysTrueWarning(t *testing.T) {
	res := lowered(t, `fn main(x: Field) -> pub Field { assert(3 == 3); x }`)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diag.CirAlwaysTrue, res.Warnings[0].Code)
	assert.False(t, res.Warnings[0].IsError())
}

func TestLowerRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"ordering outside assert", `fn main(a: u8, b: u8) -> pub bool { a < b }`, diag.CirUnsupported},
		{"field division by zero", `fn main(x: Field) -> pub Field { x / 0 }`, diag.CirDivideByZero},
		{"integer division", `fn main(a: u8, b: u8) -> pub u8 { a / b }`, diag.CirUnsupported},
		{"dynamic index", `fn main(xs: [Field; 2], i: Field) -> pub Field { xs[i] }`, diag.CirDynamicIndex},
		{"out of bounds", `fn main(xs: [Field; 2]) -> pub Field { xs[2] }`, diag.CirOutOfBounds},
		{"recursion", `fn f(x: Field) -> Field { f(x) } fn main(x: Field) -> pub Field { f(x) }`, diag.CirRecursion},
		{"assert false", `fn main(x: Field) -> pub Field { assert(1 == 2); x }`, diag.CirAssertFailed},
		{"constant overflow", `fn main(x: u8) -> pub u8 { let y: u8 = 200 + 100; x + y }`, diag.CirOverflow},
		{"constant ordering", `fn main(x: u8) -> pub u8 { let y: u8 = 3; assert(y > 4); x }`, diag.CirAssertFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := program(t, tt.src)
			_, err := CreateCircuit(p, Options{Out: &bytes.Buffer{}})
			var rerr *RuntimeError
			require.True(t, errors.As(err, &rerr), "expected a runtime error, got %v", err)
			assert.Equal(t, tt.code, rerr.Code)
			require.NotEmpty(t, rerr.CallStack)

			d := rerr.ToDiagnostic()
			assert.True(t, d.IsError())
			f, ok := s.Files.GetByPath("src/main.nr")
			require.True(t, ok)
			assert.Equal(t, f.ID, d.File())
		})
	}
}

func TestRuntimeErrorNotesCallers(t *testing.T) {
	_, p := program(t, `
fn pick(xs: [Field; 2]) -> Field { xs[5] }
fn main(xs: [Field; 2]) -> pub Field { pick(xs) }
`)
	_, err := CreateCircuit(p, Options{Out: &bytes.Buffer{}})
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.CallStack, 2)
	d := rerr.ToDiagnostic()
	require.Len(t, d.Notes, 1)
	assert.Equal(t, "called from here", d.Notes[0].Msg)
}

func TestLowerDeterministic(t *testing.T) {
	const prog = `
fn main(xs: [Field; 4], y: pub Field) -> pub Field {
    assert(xs[0] != y);
    std::sum(xs) * y
}
`
	a, err := lowered(t, prog).Circuit.Bytes()
	require.NoError(t, err)
	b, err := lowered(t, prog).Circuit.Bytes()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
