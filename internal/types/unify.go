package types

import "fmt"

// Unify matches a parameter type pattern (which may mention the generics in
// b) against an argument type, extending b. It reports a conflict when a
// generic would be bound twice to different types.
func Unify(pattern, arg *Type, b Bindings) error {
	if pattern.IsInvalid() || arg.IsInvalid() {
		return nil
	}
	switch pattern.Kind {
	case KindParam:
		if _, isGeneric := b[pattern.Name]; !isGeneric {
			break
		}
		return bind(pattern.Name, arg, b)
	case KindArray:
		if arg.Kind != KindArray {
			return mismatch(pattern, arg)
		}
		if !pattern.Len.IsConst() {
			if _, isGeneric := b[pattern.Len.Param]; isGeneric {
				if err := bind(pattern.Len.Param, Const(arg.Len), b); err != nil {
					return err
				}
				return Unify(pattern.Elem, arg.Elem, b)
			}
		}
		if pattern.Len != arg.Len {
			return mismatch(pattern, arg)
		}
		return Unify(pattern.Elem, arg.Elem, b)
	}
	if !Equal(pattern, arg) {
		return mismatch(pattern, arg)
	}
	return nil
}

// bind records name := t. An entry holding nil marks an unbound generic.
func bind(name string, t *Type, b Bindings) error {
	prev := b[name]
	if prev == nil {
		b[name] = t
		return nil
	}
	if !Equal(prev, t) {
		return &ConflictError{Param: name, First: prev, Second: t}
	}
	return nil
}

// MismatchError is returned when two types cannot be unified.
type MismatchError struct {
	Expected, Found *Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

// ConflictError is returned when a generic is bound twice.
type ConflictError struct {
	Param         string
	First, Second *Type
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("generic %s bound to both %s and %s", e.Param, e.First, e.Second)
}

func mismatch(expected, found *Type) error {
	return &MismatchError{Expected: expected, Found: found}
}
