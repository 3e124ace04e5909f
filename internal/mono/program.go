// Package mono turns a checked entry function and everything it calls into a
// Program without generics: every generic function is copied once per
// distinct set of generic bindings, numeric generics become literals and
// array lengths become constants.
package mono

import (
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

// FuncRef indexes Program.Functions.
type FuncRef uint32

// Program is a monomorphized entry point. Functions[0] is the entry.
//
// Source positions and local variable names are not part of the canonical
// encoding, so they never influence the content hash.
type Program struct {
	Functions []*Function `msgpack:"functions"`
}

// Entry returns the entry function.
func (p *Program) Entry() *Function {
	return p.Functions[0]
}

// Function is one instantiation of a source function.
type Function struct {
	Name          string         `msgpack:"name"`
	Unconstrained bool           `msgpack:"unconstrained,omitempty"`
	Params        []Param        `msgpack:"params"`
	Return        *types.Type    `msgpack:"return"`
	ReturnVis     hir.Visibility `msgpack:"return_vis"`
	Locals        []*types.Type  `msgpack:"locals"`
	Body          *Block         `msgpack:"body"`

	Source     hir.FuncID  `msgpack:"-"`
	LocalNames []string    `msgpack:"-"`
	Span       source.Span `msgpack:"-"`
}

// Param is a parameter of a monomorphized function. Parameter names are part
// of the ABI and therefore of the hash.
type Param struct {
	Name  string         `msgpack:"name"`
	Local hir.LocalID    `msgpack:"local"`
	Type  *types.Type    `msgpack:"type"`
	Vis   hir.Visibility `msgpack:"vis"`
}

// LocalType returns the type of local id.
func (f *Function) LocalType(id hir.LocalID) *types.Type {
	return f.Locals[id-1]
}

// LocalName returns the source name of local id.
func (f *Function) LocalName(id hir.LocalID) string {
	if int(id) <= len(f.LocalNames) && id.IsValid() {
		return f.LocalNames[id-1]
	}
	return ""
}

// Expr is a concrete expression. Kinds are those of hir except ExprGeneric,
// which is replaced by ExprLit.
type Expr struct {
	Kind  hir.ExprKind `msgpack:"k"`
	Type  *types.Type  `msgpack:"t"`
	Value string       `msgpack:"v,omitempty"`
	Bool  bool         `msgpack:"b,omitempty"`
	Local hir.LocalID  `msgpack:"l,omitempty"`
	Func  FuncRef      `msgpack:"f,omitempty"`
	Index int          `msgpack:"i,omitempty"`
	Op    string       `msgpack:"o,omitempty"`
	Args  []*Expr      `msgpack:"a,omitempty"`
	Block *Block       `msgpack:"blk,omitempty"`

	Span source.Span `msgpack:"-"`
}

// Stmt is a concrete statement; loop bounds are constants.
type Stmt struct {
	Kind  hir.StmtKind `msgpack:"k"`
	Local hir.LocalID  `msgpack:"l,omitempty"`
	Value *Expr        `msgpack:"v,omitempty"`
	Msg   string       `msgpack:"m,omitempty"`
	Lo    uint64       `msgpack:"lo,omitempty"`
	Hi    uint64       `msgpack:"hi,omitempty"`
	Body  *Block       `msgpack:"body,omitempty"`

	Span source.Span `msgpack:"-"`
}

// Block is a statement list with an optional value.
type Block struct {
	Stmts []*Stmt     `msgpack:"stmts"`
	Tail  *Expr       `msgpack:"tail,omitempty"`
	Type  *types.Type `msgpack:"type"`

	Span source.Span `msgpack:"-"`
}
