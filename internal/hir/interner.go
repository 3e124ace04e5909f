package hir

import "github.com/pryimak2/noir/internal/project/dag"

// Reader is the read-only view of resolved definitions handed to the
// compilers once checking is done.
type Reader interface {
	Func(id FuncID) *Func
	Struct(id StructID) *Struct
	Contract(id ContractID) *Contract
	Crate(crate dag.CrateID) (*CrateDefs, bool)
	MainFunction(crate dag.CrateID) (FuncID, bool)
	Contracts(crate dag.CrateID) []ContractID
}

// Interner owns every definition of a compilation session.
type Interner struct {
	funcs     *Arena[Func]
	structs   *Arena[Struct]
	contracts *Arena[Contract]
	crates    map[dag.CrateID]*CrateDefs
}

var _ Reader = (*Interner)(nil)

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{
		funcs:     NewArena[Func](64),
		structs:   NewArena[Struct](16),
		contracts: NewArena[Contract](2),
		crates:    make(map[dag.CrateID]*CrateDefs),
	}
}

// AddFunc stores f and assigns its id.
func (in *Interner) AddFunc(f Func) FuncID {
	id := FuncID(in.funcs.Allocate(f))
	in.funcs.Get(uint32(id)).ID = id
	return id
}

// AddStruct stores s and assigns its id.
func (in *Interner) AddStruct(s Struct) StructID {
	id := StructID(in.structs.Allocate(s))
	in.structs.Get(uint32(id)).ID = id
	return id
}

// AddContract stores c and assigns its id.
func (in *Interner) AddContract(c Contract) ContractID {
	id := ContractID(in.contracts.Allocate(c))
	in.contracts.Get(uint32(id)).ID = id
	return id
}

// AddCrate records the definitions of a crate. A crate is collected at most
// once; a second call for the same crate is ignored and returns false.
func (in *Interner) AddCrate(defs *CrateDefs) bool {
	if _, ok := in.crates[defs.Crate]; ok {
		return false
	}
	in.crates[defs.Crate] = defs
	return true
}

// IsCollected reports whether crate already went through collection.
func (in *Interner) IsCollected(crate dag.CrateID) bool {
	_, ok := in.crates[crate]
	return ok
}

func (in *Interner) Func(id FuncID) *Func             { return in.funcs.Get(uint32(id)) }
func (in *Interner) Struct(id StructID) *Struct       { return in.structs.Get(uint32(id)) }
func (in *Interner) Contract(id ContractID) *Contract { return in.contracts.Get(uint32(id)) }

// Crate returns the definitions collected for crate.
func (in *Interner) Crate(crate dag.CrateID) (*CrateDefs, bool) {
	defs, ok := in.crates[crate]
	return defs, ok
}

// MainFunction returns the top-level `main` of crate.
func (in *Interner) MainFunction(crate dag.CrateID) (FuncID, bool) {
	defs, ok := in.crates[crate]
	if !ok || !defs.Main.IsValid() {
		return NoFuncID, false
	}
	return defs.Main, true
}

// Contracts returns the contracts declared in crate, in source order.
func (in *Interner) Contracts(crate dag.CrateID) []ContractID {
	if defs, ok := in.crates[crate]; ok {
		return defs.Contracts
	}
	return nil
}

// FuncCount is the number of functions stored so far.
func (in *Interner) FuncCount() int { return int(in.funcs.Len()) }
