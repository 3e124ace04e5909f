package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionArithmetic(t *testing.T) {
	x, y := FromWitness(1), FromWitness(2)

	sum := Add(x, Add(y, x))
	require.Len(t, sum.Linear, 2)
	assert.Equal(t, "EXPR [ (2, _1) (1, _2) 0 ]", sum.String())

	assert.True(t, Sub(x, x).IsZero())
	assert.True(t, Equal(Add(x, y), Add(y, x)))
	assert.False(t, Equal(x, y))

	w, ok := x.AsWitness()
	require.True(t, ok)
	assert.Equal(t, Witness(1), w)
	_, ok = sum.AsWitness()
	assert.False(t, ok)
}

func TestExpressionMul(t *testing.T) {
	x, y := FromWitness(1), FromWitness(2)

	// (x + 3) * y = x*y + 3y
	p, ok := Mul(Add(x, ConstUint64(3)), y)
	require.True(t, ok)
	assert.Equal(t, 2, p.Degree())
	assert.Equal(t, "EXPR [ (1, _1, _2) (3, _2) 0 ]", p.String())

	// operand order does not matter
	q, ok := Mul(y, Add(ConstUint64(3), x))
	require.True(t, ok)
	assert.True(t, Equal(p, q))

	_, ok = Mul(p, x)
	assert.False(t, ok, "degree three must be rejected")

	scaled, ok := Mul(p, ConstUint64(2))
	require.True(t, ok)
	assert.Equal(t, "EXPR [ (2, _1, _2) (6, _2) 0 ]", scaled.String())
}

func TestExpressionNegativeConstants(t *testing.T) {
	e := Sub(FromWitness(3), ConstUint64(1))
	assert.Equal(t, "EXPR [ (1, _3) -1 ]", e.String())

	var half fr.Element
	half.SetUint64(2)
	half.Inverse(&half)
	assert.False(t, Const(half).IsZero())
	assert.Equal(t, 0, Const(half).Degree())
}

func TestExpressionWitnesses(t *testing.T) {
	p, ok := Mul(FromWitness(4), FromWitness(2))
	require.True(t, ok)
	e := Add(p, FromWitness(4))
	assert.Equal(t, []Witness{2, 4}, e.Witnesses())
	assert.Equal(t, 2, e.Width())
	assert.Equal(t, Witness(2), e.Mul[0].L, "mul terms keep L <= R")
}

func sample() *Circuit {
	c := &Circuit{}
	x, y := c.NewWitness(), c.NewWitness()
	c.PrivateParams = []Witness{x}
	c.PublicParams = []Witness{y}
	inv := c.NewWitness()
	c.Emit(Invert(Sub(FromWitness(x), FromWitness(y)), inv))
	c.Emit(Range(x, 8))
	c.Emit(AssertZero(Sub(FromWitness(x), FromWitness(y))))
	out := c.NewWitness()
	c.Emit(Brillig("inverse_hint", []Expression{FromWitness(x)}, []Witness{out}))
	c.ReturnValues = []Witness{out}
	return c
}

func TestCircuitString(t *testing.T) {
	out := sample().String()
	assert.Contains(t, out, "current witness index : _4\n")
	assert.Contains(t, out, "private parameters indices : [_1]\n")
	assert.Contains(t, out, "public parameters indices : [_2]\n")
	assert.Contains(t, out, "return value indices : [_4]\n")
	assert.Contains(t, out, "DIR::INVERT (EXPR [ (1, _1) (-1, _2) 0 ], out: _3)")
	assert.Contains(t, out, "BLACKBOX::RANGE [(_1, num_bits: 8)]")
	assert.Contains(t, out, "BRILLIG inverse_hint: inputs: [EXPR [ (1, _1) 0 ]], outputs: [_4]")
}

func TestCircuitBytesDeterministic(t *testing.T) {
	a, err := sample().Bytes()
	require.NoError(t, err)
	b, err := sample().Bytes()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	decoded, err := Decode(a)
	require.NoError(t, err)
	assert.Equal(t, sample().String(), decoded.String())

	again, err := decoded.Bytes()
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestOpcodeWitnesses(t *testing.T) {
	c := sample()
	assert.Equal(t, []Witness{1, 2, 3}, c.Opcodes[0].Witnesses())
	assert.Equal(t, []Witness{1}, c.Opcodes[1].Witnesses())
	assert.Equal(t, []Witness{1, 4}, c.Opcodes[3].Witnesses())
	assert.Equal(t, "brillig", c.Opcodes[3].Kind.String())
}
