package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindField
	KindBool
	KindUint
	KindArray
	KindStruct
	// KindParam is a generic parameter of the enclosing function.
	KindParam
	// KindConst is the value bound to a numeric generic.
	KindConst
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindField:
		return "Field"
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindParam:
		return "param"
	case KindConst:
		return "const"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the bit size of unsigned integers.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Length is an array length: either a constant or a numeric generic.
type Length struct {
	Value uint64 `msgpack:"v"`
	Param string `msgpack:"p,omitempty"`
}

// IsConst reports whether the length is known.
func (l Length) IsConst() bool { return l.Param == "" }

func (l Length) String() string {
	if l.Param != "" {
		return l.Param
	}
	return strconv.FormatUint(l.Value, 10)
}

// Field is a named struct member.
type Field struct {
	Name string `msgpack:"n"`
	Type *Type  `msgpack:"t"`
}

// Type is a self-contained type descriptor. Struct types carry their fields
// so that later phases never have to look definitions up again.
type Type struct {
	Kind   Kind    `msgpack:"k"`
	Width  Width   `msgpack:"w,omitempty"`
	Elem   *Type   `msgpack:"e,omitempty"`
	Len    Length  `msgpack:"l,omitempty"`
	Name   string  `msgpack:"n,omitempty"` // struct or generic parameter name
	Fields []Field `msgpack:"f,omitempty"`
}

var (
	invalidType = &Type{Kind: KindInvalid}
	unitType    = &Type{Kind: KindUnit}
	fieldType   = &Type{Kind: KindField}
	boolType    = &Type{Kind: KindBool}
)

func Invalid() *Type { return invalidType }
func Unit() *Type    { return unitType }
func FieldT() *Type  { return fieldType }
func Bool() *Type    { return boolType }

// Uint returns uN.
func Uint(w Width) *Type { return &Type{Kind: KindUint, Width: w} }

// Array returns [elem; n].
func Array(elem *Type, n Length) *Type { return &Type{Kind: KindArray, Elem: elem, Len: n} }

// Struct returns a struct type with its fields.
func Struct(name string, fields []Field) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// Param returns the generic parameter name.
func Param(name string) *Type { return &Type{Kind: KindParam, Name: name} }

// Const returns the binding of a numeric generic.
func Const(n Length) *Type { return &Type{Kind: KindConst, Len: n} }

// ParseUint recognises u8, u16, u32 and u64.
func ParseUint(name string) (Width, bool) {
	switch name {
	case "u8":
		return Width8, true
	case "u16":
		return Width16, true
	case "u32":
		return Width32, true
	case "u64":
		return Width64, true
	}
	return 0, false
}

func (t *Type) IsInvalid() bool { return t == nil || t.Kind == KindInvalid }
func (t *Type) IsInteger() bool { return t != nil && t.Kind == KindUint }

// IsNumeric reports whether arithmetic applies to t.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KindField || t.Kind == KindUint)
}

// FieldIndex returns the position of the named struct field.
func (t *Type) FieldIndex(name string) (int, bool) {
	if t == nil || t.Kind != KindStruct {
		return 0, false
	}
	for i, f := range t.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Equal compares two types structurally. Invalid types compare equal to
// everything so that one error does not cascade.
func Equal(a, b *Type) bool {
	if a.IsInvalid() || b.IsInvalid() {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUint:
		return a.Width == b.Width
	case KindArray:
		return a.Len == b.Len && Equal(a.Elem, b.Elem)
	case KindStruct, KindParam:
		return a.Name == b.Name
	case KindConst:
		return a.Len == b.Len
	}
	return true
}

// IsConcrete reports whether t mentions no generic parameter.
func (t *Type) IsConcrete() bool {
	if t == nil {
		return true
	}
	switch t.Kind {
	case KindParam:
		return false
	case KindConst:
		return t.Len.IsConst()
	case KindArray:
		return t.Len.IsConst() && t.Elem.IsConcrete()
	}
	return true
}

// FlatSize is the number of field elements a value of t occupies.
func (t *Type) FlatSize() uint64 {
	switch t.Kind {
	case KindField, KindBool, KindUint:
		return 1
	case KindArray:
		return t.Len.Value * t.Elem.FlatSize()
	case KindStruct:
		var n uint64
		for _, f := range t.Fields {
			n += f.Type.FlatSize()
		}
		return n
	}
	return 0
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindUnit:
		return "()"
	case KindField:
		return "Field"
	case KindBool:
		return "bool"
	case KindUint:
		return "u" + strconv.Itoa(int(t.Width))
	case KindArray:
		return "[" + t.Elem.String() + "; " + t.Len.String() + "]"
	case KindStruct, KindParam:
		return t.Name
	case KindConst:
		return t.Len.String()
	}
	return "{error}"
}

// Bindings maps generic parameter names to types. Numeric generics are bound
// to KindConst types.
type Bindings map[string]*Type

// Key renders the bindings of params in order; two calls with equal keys
// produce the same instantiation.
func (b Bindings) Key(params []string) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p)
		sb.WriteByte('=')
		if t := b[p]; t != nil {
			sb.WriteString(t.String())
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// Subst replaces generic parameters in t. Parameters without a binding are
// kept.
func Subst(t *Type, b Bindings) *Type {
	if t == nil || len(b) == 0 {
		return t
	}
	switch t.Kind {
	case KindParam:
		if r := b[t.Name]; r != nil {
			return r
		}
		return t
	case KindConst:
		return Const(SubstLength(t.Len, b))
	case KindArray:
		return Array(Subst(t.Elem, b), SubstLength(t.Len, b))
	}
	return t
}

// SubstLength resolves a generic length through b.
func SubstLength(l Length, b Bindings) Length {
	if l.IsConst() {
		return l
	}
	if r := b[l.Param]; r != nil && r.Kind == KindConst {
		return r.Len
	}
	return l
}
