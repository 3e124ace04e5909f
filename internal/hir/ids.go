// Package hir is the resolved, typed representation produced by semantic
// analysis. Definitions live in an Interner keyed by 1-based ids; the zero
// id of every kind means "none".
//
// The Interner is written only by the check pipeline. Everything that runs
// afterwards (monomorphization, lowering, contract assembly) sees it through
// the read-only Reader interface.
package hir

// FuncID identifies a function of the session.
type FuncID uint32

// StructID identifies a struct declaration.
type StructID uint32

// ContractID identifies a contract declaration.
type ContractID uint32

// LocalID identifies a parameter or local variable within one function. It
// is a 1-based index into Func.Locals.
type LocalID uint32

const (
	NoFuncID     FuncID     = 0
	NoStructID   StructID   = 0
	NoContractID ContractID = 0
	NoLocalID    LocalID    = 0
)

func (id FuncID) IsValid() bool     { return id != NoFuncID }
func (id StructID) IsValid() bool   { return id != NoStructID }
func (id ContractID) IsValid() bool { return id != NoContractID }
func (id LocalID) IsValid() bool    { return id != NoLocalID }
