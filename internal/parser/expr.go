package parser

import (
	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/source"
)

// expr folds the flat operator list of n with precedence climbing. All
// binary operators are left associative.
func (c *converter) expr(n *exprNode) ast.Expr {
	operands := make([]ast.Expr, 0, len(n.Ops)+1)
	ops := make([]ast.BinaryOp, 0, len(n.Ops))
	operands = append(operands, c.unary(n.Left))
	for _, op := range n.Ops {
		ops = append(ops, ast.BinaryOp(op.Op))
		operands = append(operands, c.unary(op.Right))
	}
	pos := 0
	return climb(operands, ops, &pos, operands[0], 0)
}

// climb consumes operators binding tighter than minPrec, with lhs as the
// current left operand.
func climb(operands []ast.Expr, ops []ast.BinaryOp, pos *int, lhs ast.Expr, minPrec int) ast.Expr {
	for *pos < len(ops) && ops[*pos].Precedence() > minPrec {
		op := ops[*pos]
		*pos++
		rhs := operands[*pos]
		for *pos < len(ops) && ops[*pos].Precedence() > op.Precedence() {
			rhs = climb(operands, ops, pos, rhs, op.Precedence())
		}
		lhs = &ast.BinaryExpr{Op: op, L: lhs, R: rhs, Span: lhs.ExprSpan().Cover(rhs.ExprSpan())}
	}
	return lhs
}

func (c *converter) unary(n *unaryNode) ast.Expr {
	x := c.postfix(n.X)
	for i := len(n.Ops) - 1; i >= 0; i-- {
		x = &ast.UnaryExpr{Op: ast.UnaryOp(n.Ops[i]), X: x, Span: c.span(n.Pos, n.EndPos)}
	}
	return x
}

func (c *converter) postfix(n *postfixNode) ast.Expr {
	x := c.primary(n.Primary)
	start := n.Pos
	for _, op := range n.Ops {
		sp := c.span(start, op.EndPos)
		if op.Field != nil {
			x = &ast.FieldExpr{X: x, Field: c.ident(op.Field), Span: sp}
		} else {
			x = &ast.IndexExpr{X: x, Index: c.expr(op.Index), Span: sp}
		}
	}
	return x
}

func (c *converter) primary(n *primaryNode) ast.Expr {
	sp := c.span(n.Pos, n.EndPos)
	switch {
	case n.Int != nil:
		return &ast.IntLit{Value: *n.Int, Span: sp}
	case n.Bool != nil:
		return &ast.BoolLit{Value: *n.Bool == "true", Span: sp}
	case n.Struct != nil:
		lit := &ast.StructLit{Name: c.ident(n.Struct.Name), Span: sp}
		for _, f := range n.Struct.Fields {
			lit.Fields = append(lit.Fields, ast.FieldInit{Name: c.ident(f.Name), Value: c.expr(f.Value)})
		}
		return lit
	case n.Path != nil:
		path := &ast.PathExpr{Span: sp}
		for _, seg := range n.Path.Segments {
			path.Segments = append(path.Segments, c.ident(seg))
		}
		if n.Path.Call == nil {
			return path
		}
		path.Span = path.Segments[0].Span.Cover(path.Segments[len(path.Segments)-1].Span)
		call := &ast.CallExpr{Callee: path, Span: sp}
		for _, a := range n.Path.Call.Args {
			call.Args = append(call.Args, c.expr(a))
		}
		return call
	case n.Array != nil:
		lit := &ast.ArrayLit{Span: sp}
		for _, e := range n.Array.Elems {
			lit.Elems = append(lit.Elems, c.expr(e))
		}
		return lit
	case n.Block != nil:
		return &ast.BlockExpr{Block: c.block(n.Block)}
	case n.Paren != nil:
		return c.expr(n.Paren)
	}
	return &ast.IntLit{Value: "0", Span: source.Span{File: c.file}}
}
