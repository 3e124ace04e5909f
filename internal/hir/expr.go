package hir

import (
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

// ExprKind enumerates typed expression forms.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	// ExprLit is an integer literal; Value holds its text.
	ExprLit
	// ExprBool is a boolean literal.
	ExprBool
	// ExprLocal reads Local.
	ExprLocal
	// ExprGeneric reads the value of the numeric generic Value.
	ExprGeneric
	// ExprCall calls Func with Args; Generics are the bindings in the
	// callee's generic order.
	ExprCall
	// ExprStruct builds a struct; Args follow field declaration order.
	ExprStruct
	// ExprArray builds an array from Args.
	ExprArray
	// ExprField reads field Index of Args[0].
	ExprField
	// ExprIndex reads Args[0][Args[1]].
	ExprIndex
	// ExprUnary applies Op to Args[0].
	ExprUnary
	// ExprBinary applies Op to Args[0] and Args[1].
	ExprBinary
	// ExprBlock evaluates Block.
	ExprBlock
)

var exprKindNames = [...]string{
	ExprInvalid: "invalid",
	ExprLit:     "lit",
	ExprBool:    "bool",
	ExprLocal:   "local",
	ExprGeneric: "generic",
	ExprCall:    "call",
	ExprStruct:  "struct",
	ExprArray:   "array",
	ExprField:   "field",
	ExprIndex:   "index",
	ExprUnary:   "unary",
	ExprBinary:  "binary",
	ExprBlock:   "block",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "unknown"
}

// Expr is a typed expression.
type Expr struct {
	Kind     ExprKind
	Type     *types.Type
	Value    string
	Bool     bool
	Local    LocalID
	Func     FuncID
	Generics []*types.Type
	Index    int
	Op       string
	Args     []*Expr
	Block    *Block
	Span     source.Span
}

// StmtKind enumerates statement forms.
type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtAssign
	StmtAssert
	StmtFor
	StmtExpr
)

// Stmt is a checked statement.
//
//	StmtLet, StmtAssign: Local = Value
//	StmtAssert:          assert(Value, Msg)
//	StmtFor:             for Local in Lo..Hi Body
//	StmtExpr:            Value
type Stmt struct {
	Kind  StmtKind
	Local LocalID
	Value *Expr
	Msg   string
	Lo    types.Length
	Hi    types.Length
	Body  *Block
	Span  source.Span
}

// Block is a statement list with an optional value.
type Block struct {
	Stmts []*Stmt
	Tail  *Expr
	Type  *types.Type
	Span  source.Span
}
