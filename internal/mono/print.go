package mono

import (
	"fmt"
	"io"
	"strings"

	"github.com/pryimak2/noir/internal/hir"
)

// Dump writes a readable rendering of p to w.
func Dump(w io.Writer, p *Program) error {
	pr := &printer{p: p}
	for i, f := range p.Functions {
		if i > 0 {
			pr.sb.WriteByte('\n')
		}
		pr.function(FuncRef(i), f) // #nosec G115 -- bounded by instantiate
	}
	_, err := io.WriteString(w, pr.sb.String())
	return err
}

func (p *Program) String() string {
	var sb strings.Builder
	_ = Dump(&sb, p)
	return sb.String()
}

type printer struct {
	p      *Program
	f      *Function
	sb     strings.Builder
	indent int
}

func (pr *printer) printf(format string, args ...any) {
	fmt.Fprintf(&pr.sb, format, args...)
}

func (pr *printer) line(format string, args ...any) {
	pr.sb.WriteString(strings.Repeat("    ", pr.indent))
	pr.printf(format, args...)
	pr.sb.WriteByte('\n')
}

func (pr *printer) local(id hir.LocalID) string {
	return fmt.Sprintf("%s$%d", pr.f.LocalName(id), id)
}

func (pr *printer) function(ref FuncRef, f *Function) {
	pr.f = f
	kw := "fn"
	if f.Unconstrained {
		kw = "unconstrained fn"
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		vis := ""
		if p.Vis == hir.Public {
			vis = "pub "
		}
		params[i] = fmt.Sprintf("%s: %s%s", pr.local(p.Local), vis, p.Type)
	}
	pr.printf("%s f%d %s(%s) -> %s {\n", kw, ref, f.Name, strings.Join(params, ", "), f.Return)
	pr.indent++
	pr.blockBody(f.Body)
	pr.indent--
	pr.sb.WriteString("}\n")
}

func (pr *printer) blockBody(b *Block) {
	for _, s := range b.Stmts {
		pr.stmt(s)
	}
	if b.Tail != nil {
		pr.line("%s", pr.expr(b.Tail))
	}
}

func (pr *printer) stmt(s *Stmt) {
	switch s.Kind {
	case hir.StmtLet:
		pr.line("let %s: %s = %s", pr.local(s.Local), pr.f.LocalType(s.Local), pr.expr(s.Value))
	case hir.StmtAssign:
		pr.line("%s = %s", pr.local(s.Local), pr.expr(s.Value))
	case hir.StmtAssert:
		if s.Msg != "" {
			pr.line("assert(%s, %q)", pr.expr(s.Value), s.Msg)
		} else {
			pr.line("assert(%s)", pr.expr(s.Value))
		}
	case hir.StmtFor:
		pr.line("for %s in %d..%d {", pr.local(s.Local), s.Lo, s.Hi)
		pr.indent++
		pr.blockBody(s.Body)
		pr.indent--
		pr.line("}")
	case hir.StmtExpr:
		pr.line("%s", pr.expr(s.Value))
	}
}

func (pr *printer) expr(e *Expr) string {
	switch e.Kind {
	case hir.ExprLit:
		return e.Value
	case hir.ExprBool:
		return fmt.Sprint(e.Bool)
	case hir.ExprLocal:
		return pr.local(e.Local)
	case hir.ExprCall:
		return fmt.Sprintf("f%d(%s)", e.Func, pr.list(e.Args))
	case hir.ExprStruct:
		return fmt.Sprintf("%s { %s }", e.Type.Name, pr.list(e.Args))
	case hir.ExprArray:
		return "[" + pr.list(e.Args) + "]"
	case hir.ExprField:
		return fmt.Sprintf("%s.%s", pr.expr(e.Args[0]), e.Args[0].Type.Fields[e.Index].Name)
	case hir.ExprIndex:
		return fmt.Sprintf("%s[%s]", pr.expr(e.Args[0]), pr.expr(e.Args[1]))
	case hir.ExprUnary:
		return e.Op + pr.expr(e.Args[0])
	case hir.ExprBinary:
		return fmt.Sprintf("(%s %s %s)", pr.expr(e.Args[0]), e.Op, pr.expr(e.Args[1]))
	case hir.ExprBlock:
		inner := &printer{p: pr.p, f: pr.f, indent: pr.indent + 1}
		inner.blockBody(e.Block)
		return "{\n" + inner.sb.String() + strings.Repeat("    ", pr.indent) + "}"
	}
	return "<" + e.Kind.String() + ">"
}

func (pr *printer) list(args []*Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = pr.expr(a)
	}
	return strings.Join(parts, ", ")
}
