package mono

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/types"
)

var (
	// ErrGenericEntry is returned when the entry function has generics.
	ErrGenericEntry = errors.New("entry function cannot be generic")
	// ErrNotConcrete is returned when a type or length stays generic after
	// substitution; checked programs never trigger it.
	ErrNotConcrete = errors.New("value is not concrete after monomorphization")
	// ErrUnchecked is returned for functions without a checked body.
	ErrUnchecked = errors.New("function was not checked")
)

// InstantiationKey identifies one instantiation of a function.
//
// Go maps cannot use slices as keys, so the bindings are rendered into a
// stable ArgsKey string.
type InstantiationKey struct {
	Func    hir.FuncID
	ArgsKey string
}

type instance struct {
	key      InstantiationKey
	fn       *hir.Func
	bindings types.Bindings
	ref      FuncRef
}

type monoBuilder struct {
	r         hir.Reader
	prog      *Program
	instances map[InstantiationKey]FuncRef
	queue     []*instance
}

// Monomorphize builds the program rooted at entry. Instances are numbered in
// discovery order, so the result is deterministic.
func Monomorphize(r hir.Reader, entry hir.FuncID) (*Program, error) {
	fn := r.Func(entry)
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnchecked, entry)
	}
	if fn.IsGeneric() {
		return nil, fmt.Errorf("%w: %s", ErrGenericEntry, fn.Name)
	}
	b := &monoBuilder{
		r:         r,
		prog:      &Program{},
		instances: make(map[InstantiationKey]FuncRef),
	}
	if _, err := b.instantiate(entry, nil); err != nil {
		return nil, err
	}
	for len(b.queue) > 0 {
		inst := b.queue[0]
		b.queue = b.queue[1:]
		out, err := b.function(inst)
		if err != nil {
			return nil, err
		}
		b.prog.Functions[inst.ref] = out
	}
	return b.prog, nil
}

// instantiate returns the reference of fn under bindings, queueing a new
// instance on first use.
func (b *monoBuilder) instantiate(id hir.FuncID, bindings types.Bindings) (FuncRef, error) {
	fn := b.r.Func(id)
	if fn == nil || fn.Body == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnchecked, id)
	}
	key := InstantiationKey{Func: id, ArgsKey: bindings.Key(fn.GenericNames())}
	if ref, ok := b.instances[key]; ok {
		return ref, nil
	}
	n, err := safecast.Conv[uint32](len(b.prog.Functions))
	if err != nil {
		panic(fmt.Errorf("function count overflow: %w", err))
	}
	ref := FuncRef(n)
	b.prog.Functions = append(b.prog.Functions, nil)
	b.instances[key] = ref
	b.queue = append(b.queue, &instance{key: key, fn: fn, bindings: bindings, ref: ref})
	return ref, nil
}

func instanceName(fn *hir.Func, key InstantiationKey) string {
	if key.ArgsKey == "" {
		return fn.Name
	}
	return fn.Name + "<" + key.ArgsKey + ">"
}

func (b *monoBuilder) function(inst *instance) (*Function, error) {
	fn := inst.fn
	fb := funcBuilder{b: b, bindings: inst.bindings}
	out := &Function{
		Name:          instanceName(fn, inst.key),
		Unconstrained: fn.Unconstrained,
		ReturnVis:     fn.ReturnVis,
		Source:        fn.ID,
		Span:          fn.Span,
	}
	var err error
	if out.Return, err = fb.typ(fn.Return); err != nil {
		return nil, err
	}
	for _, p := range fn.Params {
		t, err := fb.typ(p.Type)
		if err != nil {
			return nil, err
		}
		out.Params = append(out.Params, Param{Name: p.Name, Local: p.Local, Type: t, Vis: p.Vis})
	}
	for _, l := range fn.Locals {
		t, err := fb.typ(l.Type)
		if err != nil {
			return nil, err
		}
		out.Locals = append(out.Locals, t)
		out.LocalNames = append(out.LocalNames, l.Name)
	}
	if out.Body, err = fb.block(fn.Body); err != nil {
		return nil, fmt.Errorf("%s: %w", out.Name, err)
	}
	return out, nil
}

// funcBuilder copies one function body under fixed bindings.
type funcBuilder struct {
	b        *monoBuilder
	bindings types.Bindings
}

func (fb *funcBuilder) typ(t *types.Type) (*types.Type, error) {
	out := types.Subst(t, fb.bindings)
	if !out.IsConcrete() {
		return nil, fmt.Errorf("%w: %s", ErrNotConcrete, out)
	}
	return out, nil
}

func (fb *funcBuilder) length(l types.Length) (uint64, error) {
	out := types.SubstLength(l, fb.bindings)
	if !out.IsConst() {
		return 0, fmt.Errorf("%w: length %s", ErrNotConcrete, out)
	}
	return out.Value, nil
}

func (fb *funcBuilder) block(blk *hir.Block) (*Block, error) {
	out := &Block{Span: blk.Span}
	var err error
	if out.Type, err = fb.typ(blk.Type); err != nil {
		return nil, err
	}
	for _, s := range blk.Stmts {
		st, err := fb.stmt(s)
		if err != nil {
			return nil, err
		}
		out.Stmts = append(out.Stmts, st)
	}
	if blk.Tail != nil {
		if out.Tail, err = fb.expr(blk.Tail); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (fb *funcBuilder) stmt(s *hir.Stmt) (*Stmt, error) {
	out := &Stmt{Kind: s.Kind, Local: s.Local, Msg: s.Msg, Span: s.Span}
	var err error
	if s.Value != nil {
		if out.Value, err = fb.expr(s.Value); err != nil {
			return nil, err
		}
	}
	if s.Kind == hir.StmtFor {
		if out.Lo, err = fb.length(s.Lo); err != nil {
			return nil, err
		}
		if out.Hi, err = fb.length(s.Hi); err != nil {
			return nil, err
		}
		if out.Body, err = fb.block(s.Body); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (fb *funcBuilder) expr(e *hir.Expr) (*Expr, error) {
	t, err := fb.typ(e.Type)
	if err != nil {
		return nil, err
	}
	out := &Expr{
		Kind:  e.Kind,
		Type:  t,
		Value: e.Value,
		Bool:  e.Bool,
		Local: e.Local,
		Index: e.Index,
		Op:    e.Op,
		Span:  e.Span,
	}
	switch e.Kind {
	case hir.ExprInvalid:
		return nil, fmt.Errorf("%w: invalid expression", ErrUnchecked)
	case hir.ExprGeneric:
		n, err := fb.length(types.Length{Param: e.Value})
		if err != nil {
			return nil, err
		}
		out.Kind = hir.ExprLit
		out.Value = strconv.FormatUint(n, 10)
	case hir.ExprCall:
		callee := fb.b.r.Func(e.Func)
		bindings := make(types.Bindings, len(e.Generics))
		for i, g := range e.Generics {
			gt, err := fb.typ(g)
			if err != nil {
				return nil, err
			}
			bindings[callee.Generics[i].Name] = gt
		}
		if out.Func, err = fb.b.instantiate(e.Func, bindings); err != nil {
			return nil, err
		}
	case hir.ExprBlock:
		if out.Block, err = fb.block(e.Block); err != nil {
			return nil, err
		}
	}
	for _, a := range e.Args {
		arg, err := fb.expr(a)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, arg)
	}
	return out, nil
}
