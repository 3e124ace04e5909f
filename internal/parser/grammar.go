package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type fileNode struct {
	Pos    lexer.Position
	Items  []*itemNode `@@*`
	EndPos lexer.Position
}

type itemNode struct {
	Attrs []*attrNode `@@*`
	Decl  *declNode   `@@`
}

type attrNode struct {
	Pos  lexer.Position
	Name string `"#" "[" @Ident "]"`
}

type declNode struct {
	Use      *useNode      `  @@`
	Contract *contractNode `| @@`
	Struct   *structNode   `| @@`
	Func     *funcNode     `| @@`
}

type useNode struct {
	Pos      lexer.Position
	Segments []*identNode `"use" @@ ( "::" @@ )* ";"`
	EndPos   lexer.Position
}

type identNode struct {
	Pos    lexer.Position
	Name   string `@Ident`
	EndPos lexer.Position
}

type contractNode struct {
	Pos    lexer.Position
	Name   *identNode  `"contract" @@ "{"`
	Items  []*itemNode `@@* "}"`
	EndPos lexer.Position
}

type structNode struct {
	Pos    lexer.Position
	Name   *identNode   `"struct" @@ "{"`
	Fields []*fieldNode `( @@ ( "," @@ )* ","? )? "}"`
	EndPos lexer.Position
}

type fieldNode struct {
	Name *identNode `@@ ":"`
	Type *typeNode  `@@`
}

type funcNode struct {
	Pos       lexer.Position
	Modifiers []string     `@( "open" | "secret" | "unconstrained" )*`
	Name      *identNode   `"fn" @@`
	Generics  []*identNode `( "<" @@ ( "," @@ )* ","? ">" )?`
	Params    []*paramNode `"(" ( @@ ( "," @@ )* ","? )? ")"`
	Return    *returnNode  `@@?`
	Body      *blockNode   `@@`
	EndPos    lexer.Position
}

type paramNode struct {
	Name *identNode `@@ ":"`
	Pub  bool       `@"pub"?`
	Type *typeNode  `@@`
}

type returnNode struct {
	Pub  bool      `"->" @"pub"?`
	Type *typeNode `@@`
}

type typeNode struct {
	Pos    lexer.Position
	Array  *arrayTypeNode `  @@`
	Name   *identNode     `| @@`
	EndPos lexer.Position
}

type arrayTypeNode struct {
	Elem *typeNode  `"[" @@ ";"`
	Len  *boundNode `@@ "]"`
}

type boundNode struct {
	Pos    lexer.Position
	Int    *string `  @Integer`
	Name   *string `| @Ident`
	EndPos lexer.Position
}

type blockNode struct {
	Pos    lexer.Position
	Stmts  []*stmtNode `"{" @@* "}"`
	EndPos lexer.Position
}

type stmtNode struct {
	Pos    lexer.Position
	Let    *letNode      `  @@`
	Assert *assertNode   `| @@`
	For    *forNode      `| @@`
	Assign *assignNode   `| @@`
	Expr   *exprStmtNode `| @@`
	EndPos lexer.Position
}

type letNode struct {
	Mut   bool       `"let" @"mut"?`
	Name  *identNode `@@`
	Type  *typeNode  `( ":" @@ )?`
	Value *exprNode  `"=" @@ ";"`
}

type assertNode struct {
	Cond *exprNode `"assert" "(" @@`
	Msg  *string   `( "," @String )? ")" ";"`
}

type forNode struct {
	Var  *identNode `"for" @@ "in"`
	Lo   *boundNode `@@ ".."`
	Hi   *boundNode `@@`
	Body *blockNode `@@`
}

type assignNode struct {
	Target *identNode `@@ "="`
	Value  *exprNode  `@@ ";"`
}

type exprStmtNode struct {
	X    *exprNode `@@`
	Semi bool      `@";"?`
}

type exprNode struct {
	Pos    lexer.Position
	Left   *unaryNode   `@@`
	Ops    []*binOpNode `@@*`
	EndPos lexer.Position
}

type binOpNode struct {
	Op    string     `@( "|" | "&" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "+" | "-" | "*" | "/" )`
	Right *unaryNode `@@`
}

type unaryNode struct {
	Pos    lexer.Position
	Ops    []string     `@( "!" | "-" )*`
	X      *postfixNode `@@`
	EndPos lexer.Position
}

type postfixNode struct {
	Pos     lexer.Position
	Primary *primaryNode `@@`
	Ops     []*postfixOp `@@*`
	EndPos  lexer.Position
}

type postfixOp struct {
	EndPos lexer.Position
	Field  *identNode `  "." @@`
	Index  *exprNode  `| "[" @@ "]"`
}

type primaryNode struct {
	Pos    lexer.Position
	Int    *string        `  @Integer`
	Bool   *string        `| @( "true" | "false" )`
	Struct *structLitNode `| @@`
	Path   *pathNode      `| @@`
	Array  *arrayLitNode  `| @@`
	Block  *blockNode     `| @@`
	Paren  *exprNode      `| "(" @@ ")"`
	EndPos lexer.Position
}

type pathNode struct {
	Pos      lexer.Position
	Segments []*identNode `@@ ( "::" @@ )?`
	Call     *callArgs    `@@?`
	EndPos   lexer.Position
}

type callArgs struct {
	Args []*exprNode `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

type structLitNode struct {
	Name   *identNode       `@@ "{"`
	Fields []*fieldInitNode `( @@ ( "," @@ )* ","? )? "}"`
}

type fieldInitNode struct {
	Name  *identNode `@@ ":"`
	Value *exprNode  `@@`
}

type arrayLitNode struct {
	Elems []*exprNode `"[" ( @@ ( "," @@ )* ","? )? "]"`
}
