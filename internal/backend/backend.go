// Package backend describes the proving system a circuit targets and
// rewrites compiled circuits into the shape that system accepts.
package backend

import (
	"errors"
	"fmt"
	"slices"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/tliron/commonlog"

	"github.com/pryimak2/noir/internal/circuit"
)

var log = commonlog.GetLogger("nargo.backend")

var (
	// ErrUnsupportedOpcode is returned when an opcode the backend cannot
	// prove survives optimization.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	// ErrUnsupportedCurve is returned when the backend curve's scalar field is
	// not the field circuits are compiled over.
	ErrUnsupportedCurve = errors.New("unsupported curve")
	// ErrInvalidWidth is returned for a PLONK width below 3.
	ErrInvalidWidth = errors.New("invalid width")
)

// Kind is the arithmetization of a proving system.
type Kind uint8

const (
	// R1CS accepts rank-one constraints of any width.
	R1CS Kind = iota
	// PLONKCSat accepts constraints over at most Width witnesses.
	PLONKCSat
)

func (k Kind) String() string {
	switch k {
	case R1CS:
		return "r1cs"
	case PLONKCSat:
		return "plonk-csat"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Language is the constraint language of a backend.
type Language struct {
	Kind  Kind
	Width int
	Curve ecc.ID
}

// Validate checks that circuits can be expressed in l.
func (l Language) Validate() error {
	if l.Kind == PLONKCSat && l.Width < 3 {
		return fmt.Errorf("%w: %d (plonk needs at least 3)", ErrInvalidWidth, l.Width)
	}
	if l.Curve == ecc.UNKNOWN || l.Curve.ScalarField().Cmp(fr.Modulus()) != 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurve, l.Curve)
	}
	return nil
}

func (l Language) String() string {
	if l.Kind == PLONKCSat {
		return fmt.Sprintf("%s(width=%d)/%s", l.Kind, l.Width, l.Curve)
	}
	return fmt.Sprintf("%s/%s", l.Kind, l.Curve)
}

// OpcodeSupport lists the opcode kinds a backend cannot prove.
type OpcodeSupport struct {
	Unsupported []circuit.OpcodeKind
}

// IsOpcodeSupported reports whether the backend accepts op.
func (s OpcodeSupport) IsOpcodeSupported(op circuit.Opcode) bool {
	return !slices.Contains(s.Unsupported, op.Kind)
}

// Backend is a proving system the compiled circuits are optimized for.
type Backend struct {
	Name     string
	Language Language
	Support  OpcodeSupport
}

// Default returns the width-3 PLONK backend over BN254.
func Default() *Backend {
	return &Backend{
		Name:     "plonk-bn254",
		Language: Language{Kind: PLONKCSat, Width: 3, Curve: ecc.BN254},
	}
}

// IsOpcodeSupported reports whether b accepts op.
func (b *Backend) IsOpcodeSupported(op circuit.Opcode) bool {
	return b.Support.IsOpcodeSupported(op)
}
