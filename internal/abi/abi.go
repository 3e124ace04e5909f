// Package abi describes how callers encode the inputs and decode the outputs
// of a compiled function.
package abi

import (
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/types"
)

// TypeKind tags an AbiType.
type TypeKind string

const (
	KindField   TypeKind = "field"
	KindInteger TypeKind = "integer"
	KindBoolean TypeKind = "boolean"
	KindArray   TypeKind = "array"
	KindStruct  TypeKind = "struct"
)

// Sign of an integer type. Only unsigned integers exist today.
type Sign string

const Unsigned Sign = "unsigned"

// Visibility of a parameter or return value.
type Visibility string

const (
	Private Visibility = "private"
	Public  Visibility = "public"
)

// VisibilityOf converts a declaration visibility.
func VisibilityOf(v hir.Visibility) Visibility {
	if v == hir.Public {
		return Public
	}
	return Private
}

// AbiType is the encoding-relevant shape of a value.
type AbiType struct {
	Kind   TypeKind      `json:"kind" msgpack:"kind"`
	Sign   Sign          `json:"sign,omitempty" msgpack:"sign,omitempty"`
	Width  uint32        `json:"width,omitempty" msgpack:"width,omitempty"`
	Length uint64        `json:"length,omitempty" msgpack:"length,omitempty"`
	Type   *AbiType      `json:"type,omitempty" msgpack:"type,omitempty"`
	Path   string        `json:"path,omitempty" msgpack:"path,omitempty"`
	Fields []StructField `json:"fields,omitempty" msgpack:"fields,omitempty"`
}

// StructField is a named member of a struct AbiType.
type StructField struct {
	Name string  `json:"name" msgpack:"name"`
	Type AbiType `json:"type" msgpack:"type"`
}

// FromType converts a concrete type. Unit has no ABI representation and
// yields nil.
func FromType(t *types.Type) *AbiType {
	switch t.Kind {
	case types.KindField:
		return &AbiType{Kind: KindField}
	case types.KindBool:
		return &AbiType{Kind: KindBoolean}
	case types.KindUint:
		return &AbiType{Kind: KindInteger, Sign: Unsigned, Width: uint32(t.Width)}
	case types.KindArray:
		return &AbiType{Kind: KindArray, Length: t.Len.Value, Type: FromType(t.Elem)}
	case types.KindStruct:
		out := &AbiType{Kind: KindStruct, Path: t.Name}
		for _, f := range t.Fields {
			out.Fields = append(out.Fields, StructField{Name: f.Name, Type: *FromType(f.Type)})
		}
		return out
	}
	return nil
}

// FieldCount is the number of field elements a value of t occupies.
func (t *AbiType) FieldCount() uint64 {
	switch t.Kind {
	case KindArray:
		return t.Length * t.Type.FieldCount()
	case KindStruct:
		var n uint64
		for i := range t.Fields {
			n += t.Fields[i].Type.FieldCount()
		}
		return n
	}
	return 1
}

// Parameter is one input of a function.
type Parameter struct {
	Name       string     `json:"name" msgpack:"name"`
	Type       AbiType    `json:"type" msgpack:"type"`
	Visibility Visibility `json:"visibility" msgpack:"visibility"`
}

// ABI is the ordered parameter list plus the optional return type.
type ABI struct {
	Parameters       []Parameter `json:"parameters" msgpack:"parameters"`
	ReturnType       *AbiType    `json:"return_type,omitempty" msgpack:"return_type,omitempty"`
	ReturnVisibility Visibility  `json:"return_visibility,omitempty" msgpack:"return_visibility,omitempty"`
}

// FieldCount is the number of field elements of all parameters.
func (a *ABI) FieldCount() uint64 {
	var n uint64
	for i := range a.Parameters {
		n += a.Parameters[i].Type.FieldCount()
	}
	return n
}

// PublicABI keeps only the public parameters and the return type.
func (a *ABI) PublicABI() *ABI {
	out := &ABI{ReturnType: a.ReturnType, ReturnVisibility: a.ReturnVisibility}
	for _, p := range a.Parameters {
		if p.Visibility == Public {
			out.Parameters = append(out.Parameters, p)
		}
	}
	return out
}

// ContractEvent describes the layout of an event a contract can emit.
type ContractEvent struct {
	Name   string        `json:"name" msgpack:"name"`
	Fields []StructField `json:"fields" msgpack:"fields"`
}

// EventFromStruct builds the descriptor of an event struct.
func EventFromStruct(s *hir.Struct) ContractEvent {
	ev := ContractEvent{Name: s.Name}
	if t := FromType(s.Type); t != nil {
		ev.Fields = t.Fields
	}
	return ev
}
