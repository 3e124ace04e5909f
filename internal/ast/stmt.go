package ast

import "github.com/pryimak2/noir/internal/source"

// Block is a braced statement list with an optional tail expression.
type Block struct {
	Stmts []Stmt
	Tail  Expr
	Span  source.Span
}

// Stmt is implemented by every statement node.
type Stmt interface {
	StmtSpan() source.Span
}

type LetStmt struct {
	Name  Ident
	Mut   bool
	Type  *TypeExpr
	Value Expr
	Span  source.Span
}

type AssignStmt struct {
	Target Ident
	Value  Expr
	Span   source.Span
}

type AssertStmt struct {
	Cond Expr
	Msg  string
	Span source.Span
}

type ForStmt struct {
	Var  Ident
	Lo   *Bound
	Hi   *Bound
	Body *Block
	Span source.Span
}

type ExprStmt struct {
	X    Expr
	Span source.Span
}

func (s *LetStmt) StmtSpan() source.Span    { return s.Span }
func (s *AssignStmt) StmtSpan() source.Span { return s.Span }
func (s *AssertStmt) StmtSpan() source.Span { return s.Span }
func (s *ForStmt) StmtSpan() source.Span    { return s.Span }
func (s *ExprStmt) StmtSpan() source.Span   { return s.Span }
