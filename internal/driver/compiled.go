package driver

import (
	"fmt"

	"github.com/pryimak2/noir/internal/abi"
	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/debuginfo"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
)

// CompiledProgram is a compiled entry point. Hash is the content hash of the
// monomorphized program and serves as the cache key.
type CompiledProgram struct {
	Hash     uint64
	Circuit  *circuit.Circuit
	ABI      *abi.ABI
	Debug    *debuginfo.DebugInfo
	FileMap  []debuginfo.DebugFile
	Version  string
	Warnings []diag.Diagnostic
}

// FunctionType is the kind of a contract entry point.
type FunctionType uint8

const (
	// Secret functions run in private.
	Secret FunctionType = iota
	// Open functions run in public.
	Open
	// Unconstrained functions produce no constraints.
	Unconstrained
)

func (t FunctionType) String() string {
	switch t {
	case Secret:
		return "secret"
	case Open:
		return "open"
	case Unconstrained:
		return "unconstrained"
	}
	return fmt.Sprintf("FunctionType(%d)", t)
}

// functionTypeOf classifies an entry point. Unconstrained wins over the
// declared visibility.
func functionTypeOf(fn *hir.Func) FunctionType {
	switch {
	case fn.Unconstrained:
		return Unconstrained
	case fn.Entry == hir.EntryOpen:
		return Open
	}
	return Secret
}

// ContractFunction is one compiled entry point of a contract.
type ContractFunction struct {
	Name       string
	Type       FunctionType
	IsInternal bool
	ABI        *abi.ABI
	Circuit    *circuit.Circuit
	Debug      *debuginfo.DebugInfo
}

// CompiledContract is a contract with its entry points and events.
type CompiledContract struct {
	Name      string
	Functions []ContractFunction
	Events    []abi.ContractEvent
	FileMap   []debuginfo.DebugFile
	Version   string
	Warnings  []diag.Diagnostic
}
