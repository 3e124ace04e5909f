package ast

import "github.com/pryimak2/noir/internal/source"

// Expr is implemented by every expression node.
type Expr interface {
	ExprSpan() source.Span
}

// BinaryOp is a binary operator.
type BinaryOp string

const (
	OpOr  BinaryOp = "|"
	OpAnd BinaryOp = "&"
	OpEq  BinaryOp = "=="
	OpNe  BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLe  BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGe  BinaryOp = ">="
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
)

// Precedence returns the binding power of op; higher binds tighter.
func (op BinaryOp) Precedence() int {
	switch op {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpEq, OpNe:
		return 3
	case OpLt, OpLe, OpGt, OpGe:
		return 4
	case OpAdd, OpSub:
		return 5
	case OpMul, OpDiv:
		return 6
	}
	return 0
}

// IsOrdering reports whether op is one of < <= > >=.
func (op BinaryOp) IsOrdering() bool {
	return op == OpLt || op == OpLe || op == OpGt || op == OpGe
}

// UnaryOp is a prefix operator.
type UnaryOp string

const (
	OpNot UnaryOp = "!"
	OpNeg UnaryOp = "-"
)

type IntLit struct {
	Value string
	Span  source.Span
}

type BoolLit struct {
	Value bool
	Span  source.Span
}

// PathExpr is a name, optionally qualified by a dependency: `x` or `dep::x`.
type PathExpr struct {
	Segments []Ident
	Span     source.Span
}

type CallExpr struct {
	Callee *PathExpr
	Args   []Expr
	Span   source.Span
}

type FieldInit struct {
	Name  Ident
	Value Expr
}

type StructLit struct {
	Name   Ident
	Fields []FieldInit
	Span   source.Span
}

type ArrayLit struct {
	Elems []Expr
	Span  source.Span
}

type FieldExpr struct {
	X     Expr
	Field Ident
	Span  source.Span
}

type IndexExpr struct {
	X     Expr
	Index Expr
	Span  source.Span
}

type UnaryExpr struct {
	Op   UnaryOp
	X    Expr
	Span source.Span
}

type BinaryExpr struct {
	Op   BinaryOp
	L, R Expr
	Span source.Span
}

// BlockExpr is a nested block used as an expression.
type BlockExpr struct {
	Block *Block
}

func (e *IntLit) ExprSpan() source.Span     { return e.Span }
func (e *BoolLit) ExprSpan() source.Span    { return e.Span }
func (e *PathExpr) ExprSpan() source.Span   { return e.Span }
func (e *CallExpr) ExprSpan() source.Span   { return e.Span }
func (e *StructLit) ExprSpan() source.Span  { return e.Span }
func (e *ArrayLit) ExprSpan() source.Span   { return e.Span }
func (e *FieldExpr) ExprSpan() source.Span  { return e.Span }
func (e *IndexExpr) ExprSpan() source.Span  { return e.Span }
func (e *UnaryExpr) ExprSpan() source.Span  { return e.Span }
func (e *BinaryExpr) ExprSpan() source.Span { return e.Span }
func (e *BlockExpr) ExprSpan() source.Span  { return e.Block.Span }
