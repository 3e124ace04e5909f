package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/testkit"
)

func parse(t *testing.T, src string) (*ast.File, []diag.Diagnostic) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("src/main.nr", []byte(src))
	return ParseFile(fs, id)
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, diags := parse(t, src)
	require.Empty(t, diags)
	require.NotNil(t, f)
	return f
}

func TestParseProgram(t *testing.T) {
	f := mustParse(t, `
use std::sum;

struct Point { x: Field, y: Field }

// entry point
fn main(x: Field, y: pub Field) -> pub Field {
    let mut acc = 0;
    for i in 0..3 {
        acc = acc + i;
    }
    assert(x != y, "x and y must differ");
    x + y * acc
}
`)
	require.Len(t, f.Uses, 1)
	assert.Equal(t, "std", f.Uses[0].Path[0].Name)
	assert.Equal(t, "sum", f.Uses[0].Path[1].Name)

	require.Len(t, f.Structs, 1)
	assert.Equal(t, "Point", f.Structs[0].Name.Name)
	assert.Len(t, f.Structs[0].Fields, 2)

	require.Len(t, f.Funcs, 1)
	main := f.Funcs[0]
	assert.Equal(t, "main", main.Name.Name)
	require.Len(t, main.Params, 2)
	assert.False(t, main.Params[0].Pub)
	assert.True(t, main.Params[1].Pub)
	assert.True(t, main.ReturnPub)
	assert.Equal(t, "Field", main.Return.Name.Name)

	require.Len(t, main.Body.Stmts, 3)
	let, ok := main.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.True(t, let.Mut)
	loop, ok := main.Body.Stmts[1].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "0", loop.Lo.Int)
	assert.Equal(t, "3", loop.Hi.Int)
	assertStmt, ok := main.Body.Stmts[2].(*ast.AssertStmt)
	require.True(t, ok)
	assert.Equal(t, "x and y must differ", assertStmt.Msg)

	tail, ok := main.Body.Tail.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, tail.Op)
	mul, ok := tail.R.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, mul.Op)
}

func TestParseContract(t *testing.T) {
	f := mustParse(t, `
contract Token {
    #[event]
    struct Transfer { from: Field, amount: u64 }

    open fn transfer(a: Field) -> Field { a }
    #[internal]
    secret fn mint(a: u64) -> u64 { a }
    open unconstrained fn peek(a: Field) -> Field { a }
    fn helper() {}
}
`)
	require.Len(t, f.Contracts, 1)
	c := f.Contracts[0]
	assert.Equal(t, "Token", c.Name.Name)
	require.Len(t, c.Structs, 1)
	assert.True(t, ast.HasAttr(c.Structs[0].Attrs, "event"))
	require.Len(t, c.Funcs, 4)
	assert.True(t, c.Funcs[0].Has(ast.ModOpen))
	assert.True(t, c.Funcs[1].Has(ast.ModSecret))
	assert.True(t, ast.HasAttr(c.Funcs[1].Attrs, "internal"))
	assert.True(t, c.Funcs[2].Has(ast.ModOpen))
	assert.True(t, c.Funcs[2].Has(ast.ModUnconstrained))
	assert.Zero(t, c.Funcs[3].Modifiers)
}

func TestParseGenericsAndPostfix(t *testing.T) {
	f := mustParse(t, `
fn first<T, N>(xs: [T; N]) -> T { xs[0] }
fn main(p: [Point; 2]) -> Field {
    let q = Point { x: 1, y: -2 };
    std::sum([p[0].x, q.y, first(p).x])
}
`)
	require.Len(t, f.Funcs, 2)
	first := f.Funcs[0]
	require.Len(t, first.Generics, 2)
	param := first.Params[0].Type
	require.True(t, param.IsArray())
	assert.Equal(t, "T", param.Elem.Name.Name)
	assert.Equal(t, "N", param.Len.Name.Name)
	_, ok := first.Body.Tail.(*ast.IndexExpr)
	assert.True(t, ok)

	call, ok := f.Funcs[1].Body.Tail.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Callee.Segments, 2)
	assert.Equal(t, "std", call.Callee.Segments[0].Name)
	arr, ok := call.Args[0].(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 3)
	field, ok := arr.Elems[2].(*ast.FieldExpr)
	require.True(t, ok)
	_, ok = field.X.(*ast.CallExpr)
	assert.True(t, ok)

	let := f.Funcs[1].Body.Stmts[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.StructLit)
	require.True(t, ok)
	neg, ok := lit.Fields[1].Value.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpNeg, neg.Op)
}

func TestParsePrecedence(t *testing.T) {
	f := mustParse(t, `fn main(a: bool, b: bool, x: Field) -> bool { a | b & x == 1 }`)
	or, ok := f.Funcs[0].Body.Tail.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpOr, or.Op)
	and, ok := or.R.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAnd, and.Op)
	eq, ok := and.R.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpEq, eq.Op)

	f = mustParse(t, `fn main() -> Field { 10 - 4 - 3 }`)
	sub := f.Funcs[0].Body.Tail.(*ast.BinaryExpr)
	_, leftNested := sub.L.(*ast.BinaryExpr)
	assert.True(t, leftNested)
}

func TestParseSpans(t *testing.T) {
	src := "fn main(x: Field) { assert(x == 1); }"
	f := mustParse(t, src)
	fn := f.Funcs[0]
	assert.Equal(t, "main", src[fn.Name.Span.Start:fn.Name.Span.End])
	s := fn.Body.Stmts[0].(*ast.AssertStmt)
	cond := s.Cond.(*ast.BinaryExpr)
	assert.Equal(t, "x == 1", src[cond.Span.Start:cond.Span.End])
}

func TestParseErrors(t *testing.T) {
	_, diags := parse(t, "fn main( {")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.SynUnexpectedToken, diags[0].Code)
	assert.Equal(t, diag.SevError, diags[0].Severity)

	_, diags = parse(t, "fn main() { 1 2 }")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "expected ';'")
}

func TestParseItemSpansInsideFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("src/main.nr", []byte(`
use std::sum;
struct Point { x: Field }
fn main() {}
contract C { open fn f() {} }
`))
	f, diags := ParseFile(fs, id)
	require.Empty(t, diags)
	assert.NoError(t, testkit.CheckSpanInvariants(f, fs.Get(id)))
}

func TestParseFileKeepsFileID(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("src/other.nr", []byte("fn other() {}\n"))
	id := fs.AddVirtual("src/main.nr", []byte("fn main(x: Field) { assert(x == 0); }\n"))

	f, diags := ParseFile(fs, id)
	require.Empty(t, diags)
	require.NotNil(t, f)
	assert.Equal(t, id, f.ID)
	assert.Equal(t, id, f.Span.File)
	require.Len(t, f.Funcs, 1)
	assert.Equal(t, id, f.Funcs[0].Name.Span.File)
}
