// Package parser turns .nr source files into ast.File trees.
package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/source"
)

var nrParser = participle.MustBuild[fileNode](
	participle.Lexer(nrLexer),
	participle.Elide("Whitespace", "Comment", "BlockComment"),
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

// ParseFile parses the file id of fs. On a syntax error the returned file is
// nil and the error is reported as a diagnostic.
func ParseFile(fs *source.FileSet, id source.FileID) (*ast.File, []diag.Diagnostic) {
	f := fs.Get(id)
	tree, err := nrParser.ParseBytes(f.Path, f.Content)
	if err != nil {
		return nil, []diag.Diagnostic{syntaxError(id, f, err)}
	}
	c := &converter{file: id}
	out := c.convertFile(tree)
	if len(c.diags) > 0 {
		return out, c.diags
	}
	return out, nil
}

func syntaxError(id source.FileID, f *source.File, err error) diag.Diagnostic {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return diag.NewError(diag.SynUnexpectedToken, source.Span{File: id}, err.Error())
	}
	pos := perr.Position()
	off := clampOffset(pos.Offset, len(f.Content))
	end := off
	if end < uint32(len(f.Content)) { // #nosec G115 -- clamped
		end++
	}
	return diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: off, End: end}, perr.Message())
}

func clampOffset(off, n int) uint32 {
	off = min(max(off, 0), n)
	return uint32(off) // #nosec G115 -- bounded by file size
}

type converter struct {
	file  source.FileID
	diags []diag.Diagnostic
}

func (c *converter) span(start, end lexer.Position) source.Span {
	return source.Span{
		File:  c.file,
		Start: uint32(max(start.Offset, 0)), // #nosec G115 -- lexer offsets are file offsets
		End:   uint32(max(end.Offset, 0)),   // #nosec G115 -- lexer offsets are file offsets
	}
}

func (c *converter) errorf(sp source.Span, code diag.Code, format string, args ...any) {
	c.diags = append(c.diags, diag.NewError(code, sp, fmt.Sprintf(format, args...)))
}

func (c *converter) ident(n *identNode) ast.Ident {
	return ast.Ident{Name: n.Name, Span: c.span(n.Pos, n.EndPos)}
}

func (c *converter) convertFile(n *fileNode) *ast.File {
	out := &ast.File{ID: c.file, Span: c.span(n.Pos, n.EndPos)}
	for _, item := range n.Items {
		c.item(item, &out.Uses, &out.Structs, &out.Funcs, &out.Contracts)
	}
	return out
}

func (c *converter) item(n *itemNode, uses *[]*ast.Use, structs *[]*ast.Struct, funcs *[]*ast.Func, contracts *[]*ast.Contract) {
	attrs := make([]ast.Attr, 0, len(n.Attrs))
	for _, a := range n.Attrs {
		attrs = append(attrs, ast.Attr{Name: ast.Ident{Name: a.Name, Span: c.span(a.Pos, a.Pos)}})
	}
	switch d := n.Decl; {
	case d.Use != nil:
		*uses = append(*uses, c.use(d.Use))
	case d.Struct != nil:
		*structs = append(*structs, c.structDecl(d.Struct, attrs))
	case d.Func != nil:
		*funcs = append(*funcs, c.funcDecl(d.Func, attrs))
	case d.Contract != nil:
		*contracts = append(*contracts, c.contract(d.Contract, attrs))
	}
}

func (c *converter) use(n *useNode) *ast.Use {
	u := &ast.Use{Span: c.span(n.Pos, n.EndPos)}
	for _, seg := range n.Segments {
		u.Path = append(u.Path, c.ident(seg))
	}
	return u
}

func (c *converter) contract(n *contractNode, attrs []ast.Attr) *ast.Contract {
	out := &ast.Contract{Name: c.ident(n.Name), Attrs: attrs, Span: c.span(n.Pos, n.EndPos)}
	for _, item := range n.Items {
		c.item(item, &out.Uses, &out.Structs, &out.Funcs, &out.Nested)
	}
	return out
}

func (c *converter) structDecl(n *structNode, attrs []ast.Attr) *ast.Struct {
	out := &ast.Struct{Name: c.ident(n.Name), Attrs: attrs, Span: c.span(n.Pos, n.EndPos)}
	for _, f := range n.Fields {
		out.Fields = append(out.Fields, &ast.FieldDecl{Name: c.ident(f.Name), Type: c.typeExpr(f.Type)})
	}
	return out
}

func (c *converter) funcDecl(n *funcNode, attrs []ast.Attr) *ast.Func {
	out := &ast.Func{Name: c.ident(n.Name), Attrs: attrs, Span: c.span(n.Pos, n.EndPos)}
	for _, m := range n.Modifiers {
		switch m {
		case "open":
			out.Modifiers |= ast.ModOpen
		case "secret":
			out.Modifiers |= ast.ModSecret
		case "unconstrained":
			out.Modifiers |= ast.ModUnconstrained
		}
	}
	for _, g := range n.Generics {
		out.Generics = append(out.Generics, c.ident(g))
	}
	for _, p := range n.Params {
		out.Params = append(out.Params, &ast.Param{Name: c.ident(p.Name), Pub: p.Pub, Type: c.typeExpr(p.Type)})
	}
	if n.Return != nil {
		out.Return = c.typeExpr(n.Return.Type)
		out.ReturnPub = n.Return.Pub
	}
	out.Body = c.block(n.Body)
	return out
}

func (c *converter) typeExpr(n *typeNode) *ast.TypeExpr {
	out := &ast.TypeExpr{Span: c.span(n.Pos, n.EndPos)}
	if n.Array != nil {
		out.Elem = c.typeExpr(n.Array.Elem)
		out.Len = c.bound(n.Array.Len)
		return out
	}
	out.Name = c.ident(n.Name)
	return out
}

func (c *converter) bound(n *boundNode) *ast.Bound {
	b := &ast.Bound{Span: c.span(n.Pos, n.EndPos)}
	if n.Int != nil {
		b.Int = *n.Int
	} else if n.Name != nil {
		b.Name = ast.Ident{Name: *n.Name, Span: b.Span}
	}
	return b
}

func (c *converter) block(n *blockNode) *ast.Block {
	out := &ast.Block{Span: c.span(n.Pos, n.EndPos)}
	for i, s := range n.Stmts {
		if s.Expr != nil && !s.Expr.Semi {
			if i == len(n.Stmts)-1 {
				out.Tail = c.expr(s.Expr.X)
				continue
			}
			if _, isBlock := c.primaryOnly(s.Expr.X); !isBlock {
				c.errorf(c.span(s.EndPos, s.EndPos), diag.SynUnexpectedToken, "expected ';' after expression")
			}
		}
		out.Stmts = append(out.Stmts, c.stmt(s))
	}
	return out
}

// primaryOnly reports whether e is a bare block expression, which may be
// followed by another statement without ';'.
func (c *converter) primaryOnly(e *exprNode) (*blockNode, bool) {
	if len(e.Ops) > 0 || len(e.Left.Ops) > 0 || len(e.Left.X.Ops) > 0 {
		return nil, false
	}
	b := e.Left.X.Primary.Block
	return b, b != nil
}

func (c *converter) stmt(n *stmtNode) ast.Stmt {
	sp := c.span(n.Pos, n.EndPos)
	switch {
	case n.Let != nil:
		s := &ast.LetStmt{Name: c.ident(n.Let.Name), Mut: n.Let.Mut, Value: c.expr(n.Let.Value), Span: sp}
		if n.Let.Type != nil {
			s.Type = c.typeExpr(n.Let.Type)
		}
		return s
	case n.Assert != nil:
		s := &ast.AssertStmt{Cond: c.expr(n.Assert.Cond), Span: sp}
		if n.Assert.Msg != nil {
			s.Msg = *n.Assert.Msg
		}
		return s
	case n.For != nil:
		return &ast.ForStmt{
			Var:  c.ident(n.For.Var),
			Lo:   c.bound(n.For.Lo),
			Hi:   c.bound(n.For.Hi),
			Body: c.block(n.For.Body),
			Span: sp,
		}
	case n.Assign != nil:
		return &ast.AssignStmt{Target: c.ident(n.Assign.Target), Value: c.expr(n.Assign.Value), Span: sp}
	default:
		return &ast.ExprStmt{X: c.expr(n.Expr.X), Span: sp}
	}
}
