package hir

import (
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

// Visibility of a parameter or return value in the circuit ABI.
type Visibility uint8

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// EntryKind marks a contract function as an entry point.
type EntryKind uint8

const (
	// NotEntry is a helper function: not callable from outside.
	NotEntry EntryKind = iota
	EntrySecret
	EntryOpen
)

// Generic is a function-level generic parameter. Numeric generics stand for
// array lengths and may be read as values.
type Generic struct {
	Name    string
	Numeric bool
}

// Local is a parameter or let-bound variable.
type Local struct {
	Name    string
	Type    *types.Type
	Mutable bool
	Param   bool
	Span    source.Span
}

// Param is one function parameter.
type Param struct {
	Local LocalID
	Name  string
	Type  *types.Type
	Vis   Visibility
	Span  source.Span
}

// Func is a checked function.
type Func struct {
	ID            FuncID
	Name          string
	Crate         dag.CrateID
	Contract      ContractID
	Generics      []Generic
	Params        []Param
	Return        *types.Type
	ReturnVis     Visibility
	Locals        []Local
	Body          *Block
	Entry         EntryKind
	Unconstrained bool
	Internal      bool
	Span          source.Span
	NameSpan      source.Span
}

// IsEntryPoint reports whether f is an externally callable contract
// function.
func (f *Func) IsEntryPoint() bool {
	return f.Contract.IsValid() && f.Entry != NotEntry
}

// IsGeneric reports whether f has generic parameters.
func (f *Func) IsGeneric() bool { return len(f.Generics) > 0 }

// GenericNames lists the generic parameter names in declaration order.
func (f *Func) GenericNames() []string {
	out := make([]string, len(f.Generics))
	for i, g := range f.Generics {
		out[i] = g.Name
	}
	return out
}

// Local returns the local with the given id.
func (f *Func) Local(id LocalID) *Local {
	if !id.IsValid() || int(id) > len(f.Locals) {
		return nil
	}
	return &f.Locals[id-1]
}

// AddLocal registers a local and returns its id.
func (f *Func) AddLocal(l Local) LocalID {
	f.Locals = append(f.Locals, l)
	return LocalID(len(f.Locals)) // #nosec G115 -- bounded by function size
}

// Struct is a struct declaration with its resolved type.
type Struct struct {
	ID       StructID
	Name     string
	Crate    dag.CrateID
	Contract ContractID
	Type     *types.Type
	IsEvent  bool
	Span     source.Span
}

// Contract is a named group of functions and structs.
type Contract struct {
	ID      ContractID
	Name    string
	Crate   dag.CrateID
	Funcs   []FuncID // declaration order
	Structs []StructID
	Scope   Scope
	Span    source.Span
}

// Events returns the event structs of c.
func (c *Contract) Events(r Reader) []*Struct {
	var out []*Struct
	for _, id := range c.Structs {
		if s := r.Struct(id); s != nil && s.IsEvent {
			out = append(out, s)
		}
	}
	return out
}

// Import is an item brought into scope by `use dep::item;`.
type Import struct {
	Name   string
	Func   FuncID
	Struct StructID
	Span   source.Span
}

// Scope maps the names of one namespace level to definitions.
type Scope struct {
	Funcs   map[string]FuncID
	Structs map[string]StructID
}

// NewScope returns an empty namespace level.
func NewScope() Scope {
	return Scope{
		Funcs:   make(map[string]FuncID),
		Structs: make(map[string]StructID),
	}
}

// CrateDefs are the definitions collected for one crate.
type CrateDefs struct {
	Crate     dag.CrateID
	File      source.FileID
	Top       Scope
	Imports   map[string]Import
	Contracts []ContractID
	// Funcs lists every function of the crate in declaration order,
	// contract functions included.
	Funcs []FuncID
	Main  FuncID
	// Diagnostics are the findings of collecting this crate. They are kept so
	// that checking a crate again reports them without collecting twice.
	Diagnostics []diag.Diagnostic
}

// NewCrateDefs returns empty definitions for crate.
func NewCrateDefs(crate dag.CrateID, file source.FileID) *CrateDefs {
	return &CrateDefs{
		Crate:   crate,
		File:    file,
		Top:     NewScope(),
		Imports: make(map[string]Import),
	}
}
