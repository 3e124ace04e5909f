// Package ast is the syntax tree of .nr source files. Every node records the
// byte span it was parsed from.
package ast

import (
	"github.com/pryimak2/noir/internal/source"
)

// Ident is a name with its position.
type Ident struct {
	Name string
	Span source.Span
}

// File is one parsed source file.
type File struct {
	ID        source.FileID
	Uses      []*Use
	Structs   []*Struct
	Funcs     []*Func
	Contracts []*Contract
	Span      source.Span
}

// Use imports one item of a dependency: `use dep::item;`.
type Use struct {
	Path []Ident
	Span source.Span
}

// Attr is an outer attribute such as #[event].
type Attr struct {
	Name Ident
}

// Struct is a struct declaration.
type Struct struct {
	Name   Ident
	Attrs  []Attr
	Fields []*FieldDecl
	Span   source.Span
}

// FieldDecl is one field of a struct declaration.
type FieldDecl struct {
	Name Ident
	Type *TypeExpr
}

// Modifier is a function modifier keyword.
type Modifier uint8

const (
	ModOpen Modifier = 1 << iota
	ModSecret
	ModUnconstrained
)

// Func is a function declaration.
type Func struct {
	Name      Ident
	Attrs     []Attr
	Modifiers Modifier
	Generics  []Ident
	Params    []*Param
	Return    *TypeExpr // nil for unit
	ReturnPub bool
	Body      *Block
	Span      source.Span
}

// Has reports whether the modifier is present.
func (f *Func) Has(m Modifier) bool { return f.Modifiers&m != 0 }

// HasAttr reports whether the named attribute is present.
func HasAttr(attrs []Attr, name string) bool {
	for _, a := range attrs {
		if a.Name.Name == name {
			return true
		}
	}
	return false
}

// Param is a function parameter.
type Param struct {
	Name Ident
	Pub  bool
	Type *TypeExpr
}

// Contract groups functions and structs under one name.
type Contract struct {
	Name    Ident
	Attrs   []Attr
	Structs []*Struct
	Funcs   []*Func
	Nested  []*Contract // reported by the resolver
	Uses    []*Use      // reported by the resolver
	Span    source.Span
}

// TypeExpr is a written type: a name or an array.
type TypeExpr struct {
	Name Ident     // set for named types
	Elem *TypeExpr // set for arrays
	Len  *Bound    // set for arrays
	Span source.Span
}

// IsArray reports whether the type is [T; N].
func (t *TypeExpr) IsArray() bool { return t.Elem != nil }

// Bound is an integer literal or a name, used for array lengths and loop
// ranges.
type Bound struct {
	Int  string // decimal or hex literal
	Name Ident
	Span source.Span
}
