package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/testkit"
	"github.com/pryimak2/noir/internal/types"
)

func collect(s *testkit.Session) []diag.Diagnostic {
	return CollectDefs(Options{Files: s.Files, Graph: s.Graph, Defs: s.Defs}, s.Root)
}

func codes(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func funcByName(t *testing.T, s *testkit.Session, name string) *hir.Func {
	t.Helper()
	defs, ok := s.Defs.Crate(s.Root)
	require.True(t, ok)
	for _, id := range defs.Funcs {
		if f := s.Defs.Func(id); f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func TestCollectProgram(t *testing.T) {
	s := testkit.NewSession(`
use std::sum;

struct Point { x: Field, y: Field }

fn first<T, N>(xs: [T; N]) -> T { xs[0] }

fn norm(p: Point) -> Field { p.x * p.x + p.y * p.y }

fn main(x: Field, y: pub Field, xs: [Field; 3], small: u8) -> pub Field {
    assert(x != y);
    assert(small < 10);
    let p = Point { x: x, y: y };
    let mut acc = sum(xs) + norm(p);
    for i in 0..3 {
        acc = acc + xs[i];
    }
    acc + first(xs) + std::square(x)
}
`)
	diags := collect(s)
	require.Empty(t, diags, "%v", diags)

	mainID, ok := s.Defs.MainFunction(s.Root)
	require.True(t, ok)
	main := s.Defs.Func(mainID)
	require.Len(t, main.Params, 4)
	assert.Equal(t, hir.Private, main.Params[0].Vis)
	assert.Equal(t, hir.Public, main.Params[1].Vis)
	assert.Equal(t, "[Field; 3]", main.Params[2].Type.String())
	assert.Equal(t, "u8", main.Params[3].Type.String())
	assert.Equal(t, hir.Public, main.ReturnVis)
	assert.Equal(t, types.KindField, main.Return.Kind)

	first := funcByName(t, s, "first")
	require.Len(t, first.Generics, 2)
	assert.False(t, first.Generics[0].Numeric)
	assert.True(t, first.Generics[1].Numeric)

	// acc + first(xs) + std::square(x)
	tail := main.Body.Tail
	require.Equal(t, hir.ExprBinary, tail.Kind)
	call := tail.Args[0].Args[1]
	require.Equal(t, hir.ExprCall, call.Kind)
	assert.Equal(t, first.ID, call.Func)
	require.Len(t, call.Generics, 2)
	assert.Equal(t, "Field", call.Generics[0].String())
	assert.Equal(t, types.Const(types.Length{Value: 3}).String(), call.Generics[1].String())
	assert.Equal(t, types.KindConst, call.Generics[1].Kind)
}

func TestCollectContract(t *testing.T) {
	s := testkit.NewSession(`
contract Token {
    #[event] struct Transfer { from: Field, amount: u64 }
    open fn transfer(a: Field) -> Field { helper(a) }
    #[internal] secret fn mint(a: u64) -> u64 { a }
    open unconstrained fn peek(a: Field) -> Field { a }
    fn helper(a: Field) -> Field { a }
}
`)
	require.Empty(t, collect(s))

	_, hasMain := s.Defs.MainFunction(s.Root)
	assert.False(t, hasMain)

	contracts := s.Defs.Contracts(s.Root)
	require.Len(t, contracts, 1)
	c := s.Defs.Contract(contracts[0])
	assert.Equal(t, "Token", c.Name)
	require.Len(t, c.Funcs, 4)

	transfer := s.Defs.Func(c.Funcs[0])
	assert.Equal(t, hir.EntryOpen, transfer.Entry)
	assert.False(t, transfer.Internal)

	mint := s.Defs.Func(c.Funcs[1])
	assert.Equal(t, hir.EntrySecret, mint.Entry)
	assert.True(t, mint.Internal)

	peek := s.Defs.Func(c.Funcs[2])
	assert.True(t, peek.Unconstrained)
	assert.True(t, peek.IsEntryPoint())

	helper := s.Defs.Func(c.Funcs[3])
	assert.False(t, helper.IsEntryPoint())

	events := c.Events(s.Defs)
	require.Len(t, events, 1)
	assert.Equal(t, "Transfer", events[0].Name)
	assert.Equal(t, "u64", events[0].Type.Fields[1].Type.String())
}

func TestCollectWarnings(t *testing.T) {
	s := testkit.NewSession(`use std::square;

fn main(x: Field) {
    let unused = x;
    let _ignored = x;
    assert(x == 1);
}
`)
	diags := collect(s)
	assert.Equal(t, []diag.Code{diag.ResUnusedImport, diag.ResUnusedVariable}, codes(diags))
	for _, d := range diags {
		assert.Equal(t, diag.SevWarning, d.Severity)
	}
	assert.Contains(t, diags[1].Message, "unused")
	assert.False(t, diag.HasErrors(diags, false))
	assert.True(t, diag.HasErrors(diags, true))
}

func TestCollectErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"duplicate function", `fn f() {} fn f() {} fn main() {}`, diag.ResDuplicateDefinition},
		{"unresolved name", `fn main() { assert(y == 1); }`, diag.ResUnresolvedName},
		{"unknown dependency", `fn main() { foo::bar(); }`, diag.ResUnknownDependency},
		{"unresolved import", `use std::nothing; fn main() {}`, diag.ResUnresolvedImport},
		{"unknown type", `fn main(x: Foo) {}`, diag.ResUnknownType},
		{"return mismatch", `fn main(x: Field) -> pub bool { x }`, diag.TypMismatch},
		{"arity", `fn f(a: Field) -> Field { a } fn main() { let _y = f(1, 2); }`, diag.TypArityMismatch},
		{"not indexable", `fn main(x: Field) { let _y = x[0]; }`, diag.TypNotIndexable},
		{"unknown field", `struct P { a: Field } fn main(p: P) { let _y = p.b; }`, diag.TypUnknownField},
		{"missing field", `struct P { a: Field, b: Field } fn main() { let _p = P { a: 1 }; }`, diag.TypMissingField},
		{"immutable", `fn main(x: Field) { let y = x; y = 2; assert(y == 2); }`, diag.TypAssignImmutable},
		{"ordering on Field", `fn main(x: Field, y: Field) { assert(x < y); }`, diag.TypOrderingNonInt},
		{"literal range", `fn main(x: u8) { assert(x == 256); }`, diag.SynInvalidLiteral},
		{"recursive struct", `struct A { b: B } struct B { a: A } fn main() {}`, diag.TypMismatch},
		{"generic main", `fn main<T>(x: T) {}`, diag.TypGenericMismatch},
		{"type generic as bound", `fn f<T>(x: T) { for _i in 0..T { } } fn main() {}`, diag.TypNotNumericGeneric},
		{"call a variable", `fn main(x: Field) { x(); }`, diag.TypNotAFunction},
		{"event outside contract", `#[event] struct E { a: Field } fn main() {}`, diag.SynBadAttribute},
		{"open outside contract", `open fn f() {} fn main() {}`, diag.SynBadAttribute},
		{"nested contract", `contract A { contract B { } }`, diag.ResNestedContract},
		{"generic conflict", `fn pair<T>(a: T, b: T) -> T { a } fn main(x: u8, y: Field) { let _z = pair(x, y); }`, diag.TypGenericMismatch},
		{"syntax", `fn main( {`, diag.SynUnexpectedToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testkit.NewSession(tc.src)
			diags := collect(s)
			require.NotEmpty(t, diags)
			assert.Contains(t, codes(diags), tc.want)
			assert.True(t, diag.HasErrors(diags, false))
			for _, d := range diags {
				assert.Equal(t, s.File("src/main.nr").ID, d.File(), d.Message)
			}
		})
	}
}

func TestCollectDependencyCrate(t *testing.T) {
	s := testkit.NewSession(`
use lib::Pair;

fn main(x: Field) -> pub Field {
    let p = Pair { a: x, b: lib::double(x) };
    p.a + p.b
}
`)
	lib := s.AddDependency("lib", "lib/src/lib.nr", `
struct Pair { a: Field, b: Field }
fn double(x: Field) -> Field { x + x }
`)
	require.Empty(t, collect(s))
	assert.True(t, s.Defs.IsCollected(s.Stdlib))
	assert.True(t, s.Defs.IsCollected(lib))

	defs, ok := s.Defs.Crate(s.Root)
	require.True(t, ok)
	assert.Contains(t, defs.Imports, "Pair")
}

func TestCollectDependencyNotVisibleWithoutEdge(t *testing.T) {
	s := testkit.NewSession(`fn main(x: Field) -> pub Field { lib::double(x) }`)
	s.AddCrate("lib/src/lib.nr", `fn double(x: Field) -> Field { x + x }`)
	assert.Equal(t, []diag.Code{diag.ResUnknownDependency}, codes(collect(s)))
}

func TestCollectDefsOncePerCrate(t *testing.T) {
	s := testkit.NewSession(`fn main(x: Field) { let y = x; }`)
	first := collect(s)
	require.Len(t, first, 1)
	count := s.Defs.FuncCount()

	second := collect(s)
	assert.Equal(t, first, second)
	assert.Equal(t, count, s.Defs.FuncCount())
}

func TestStdlibIsClean(t *testing.T) {
	s := testkit.NewSession(`fn main() {}`)
	require.Empty(t, CollectDefs(Options{Files: s.Files, Graph: s.Graph, Defs: s.Defs}, s.Stdlib))
}

func TestLiteralTyping(t *testing.T) {
	s := testkit.NewSession(`
fn main(x: u8) -> pub u8 {
    let y: u8 = 0x0f;
    1 + x + y
}
`)
	require.Empty(t, collect(s))
	main := funcByName(t, s, "main")
	tail := main.Body.Tail
	lit := tail.Args[0].Args[0]
	assert.Equal(t, hir.ExprLit, lit.Kind)
	assert.Equal(t, "u8", lit.Type.String())

	let := main.Body.Stmts[0]
	assert.Equal(t, "15", let.Value.Value)
}
