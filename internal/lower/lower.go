// Package lower turns a monomorphized program into a circuit. Calls to
// constrained functions are inlined, loops are unrolled and constants are
// folded in the BN254 scalar field; calls to unconstrained functions become
// Brillig opcodes.
package lower

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/pryimak2/noir/internal/abi"
	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/debuginfo"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/mono"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/types"
)

var log = commonlog.GetLogger("nargo.lower")

// Options controls the trace output of CreateCircuit.
type Options struct {
	// ShowSSA prints the monomorphized program before lowering.
	ShowSSA bool
	// ShowBrillig prints the unconstrained calls of the circuit.
	ShowBrillig bool
	// Out receives the traces; stdout when nil.
	Out io.Writer
}

// Result is a lowered entry point.
type Result struct {
	Circuit  *circuit.Circuit
	Debug    *debuginfo.DebugInfo
	ABI      *abi.ABI
	Warnings []diag.Diagnostic
}

// value is a lowered value: the field elements of its flattened layout.
type value struct {
	typ   *types.Type
	elems []circuit.Expression
}

func (v value) scalar() circuit.Expression {
	return v.elems[0]
}

type frame struct {
	fn       *mono.Function
	ref      mono.FuncRef
	callSite source.Span
	locals   map[hir.LocalID]value
}

type lowerer struct {
	prog     *mono.Program
	c        *circuit.Circuit
	debug    *debuginfo.DebugInfo
	warnings []diag.Diagnostic
	frames   []*frame
	active   map[mono.FuncRef]bool
	span     source.Span
}

// CreateCircuit lowers the entry function of p. Programs that cannot be
// expressed as a circuit yield a *RuntimeError.
func CreateCircuit(p *mono.Program, opts Options) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.ShowSSA {
		if err := mono.Dump(out, p); err != nil {
			return nil, fmt.Errorf("show ssa: %w", err)
		}
	}

	entry := p.Entry()
	l := &lowerer{
		prog:   p,
		c:      &circuit.Circuit{},
		debug:  &debuginfo.DebugInfo{},
		active: map[mono.FuncRef]bool{0: true},
		span:   entry.Span,
	}
	top := &frame{fn: entry, locals: make(map[hir.LocalID]value)}
	l.frames = append(l.frames, top)

	res := &Result{ABI: &abi.ABI{}}
	var inputs []circuit.Expression
	for _, param := range entry.Params {
		v := l.param(param)
		top.locals[param.Local] = v
		inputs = append(inputs, v.elems...)
		res.ABI.Parameters = append(res.ABI.Parameters, abi.Parameter{
			Name:       param.Name,
			Type:       *abi.FromType(param.Type),
			Visibility: abi.VisibilityOf(param.Vis),
		})
	}
	if ret := abi.FromType(entry.Return); ret != nil {
		res.ABI.ReturnType = ret
		res.ABI.ReturnVisibility = abi.VisibilityOf(entry.ReturnVis)
	}

	if entry.Unconstrained {
		l.c.ReturnValues = l.brillig(entry, inputs)
	} else {
		ret, err := l.block(entry.Body)
		if err != nil {
			return nil, err
		}
		for _, e := range ret.elems {
			w := l.c.NewWitness()
			l.emit(circuit.AssertZero(circuit.Sub(e, circuit.FromWitness(w))))
			l.c.ReturnValues = append(l.c.ReturnValues, w)
		}
	}

	if opts.ShowBrillig {
		if err := l.showBrillig(out); err != nil {
			return nil, err
		}
	}
	log.Debugf("lowered %s: %d opcodes, %d witnesses", entry.Name, len(l.c.Opcodes), l.c.CurrentWitness)
	res.Circuit = l.c
	res.Debug = l.debug
	res.Warnings = l.warnings
	return res, nil
}

// param allocates the witnesses of an entry parameter. Integer and boolean
// inputs are range checked.
func (l *lowerer) param(p mono.Param) value {
	v := value{typ: p.Type}
	for _, leaf := range leaves(p.Type) {
		w := l.c.NewWitness()
		if p.Vis == hir.Public {
			l.c.PublicParams = append(l.c.PublicParams, w)
		} else {
			l.c.PrivateParams = append(l.c.PrivateParams, w)
		}
		l.rangeCheck(leaf, w)
		v.elems = append(v.elems, circuit.FromWitness(w))
	}
	return v
}

func (l *lowerer) rangeCheck(t *types.Type, w circuit.Witness) {
	switch t.Kind {
	case types.KindUint:
		l.emit(circuit.Range(w, uint32(t.Width)))
	case types.KindBool:
		l.emit(circuit.Range(w, 1))
	}
}

// brillig emits an unconstrained call of fn and returns its output
// witnesses.
func (l *lowerer) brillig(fn *mono.Function, inputs []circuit.Expression) []circuit.Witness {
	rets := leaves(fn.Return)
	outputs := make([]circuit.Witness, len(rets))
	for i := range outputs {
		outputs[i] = l.c.NewWitness()
	}
	l.emit(circuit.Brillig(fn.Name, inputs, outputs))
	for i, t := range rets {
		l.rangeCheck(t, outputs[i])
	}
	return outputs
}

func (l *lowerer) showBrillig(w io.Writer) error {
	for i, op := range l.c.Opcodes {
		if op.Kind != circuit.OpBrillig {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d: %s\n", i, op); err != nil {
			return fmt.Errorf("show brillig: %w", err)
		}
	}
	return nil
}

func (l *lowerer) top() *frame {
	return l.frames[len(l.frames)-1]
}

// callStack is the call sites of every inlined frame followed by the current
// position.
func (l *lowerer) callStack() []source.Span {
	stack := make([]source.Span, 0, len(l.frames))
	for _, f := range l.frames[1:] {
		stack = append(stack, f.callSite)
	}
	return append(stack, l.span)
}

func (l *lowerer) emit(op circuit.Opcode) {
	idx := l.c.Emit(op)
	l.debug.Add(idx, l.callStack())
}

func (l *lowerer) errorf(code diag.Code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Msg: fmt.Sprintf(format, args...), CallStack: l.callStack()}
}

func (l *lowerer) warn(code diag.Code, msg string) {
	l.warnings = append(l.warnings, diag.NewWarning(code, l.span, msg))
}

// materialize returns a single witness (or constant) equal to e.
func (l *lowerer) materialize(e circuit.Expression) circuit.Expression {
	if _, ok := e.AsWitness(); ok || e.IsConst() {
		return e
	}
	return circuit.FromWitness(l.witness(e))
}

// witness always allocates a fresh witness constrained to e unless e already
// is one.
func (l *lowerer) witness(e circuit.Expression) circuit.Witness {
	if w, ok := e.AsWitness(); ok {
		return w
	}
	w := l.c.NewWitness()
	l.emit(circuit.AssertZero(circuit.Sub(e, circuit.FromWitness(w))))
	return w
}

// mul multiplies, materializing quadratic operands first.
func (l *lowerer) mul(a, b circuit.Expression) circuit.Expression {
	if p, ok := circuit.Mul(a, b); ok {
		return p
	}
	if a.Degree() > 1 {
		a = l.materialize(a)
	}
	if b.Degree() > 1 {
		b = l.materialize(b)
	}
	p, ok := circuit.Mul(a, b)
	if !ok {
		panic("lower: product of linear expressions exceeds degree two")
	}
	return p
}

// leaves lists the scalar types of t in flattening order.
func leaves(t *types.Type) []*types.Type {
	switch t.Kind {
	case types.KindField, types.KindBool, types.KindUint:
		return []*types.Type{t}
	case types.KindArray:
		elem := leaves(t.Elem)
		out := make([]*types.Type, 0, t.Len.Value*uint64(len(elem)))
		for range t.Len.Value {
			out = append(out, elem...)
		}
		return out
	case types.KindStruct:
		var out []*types.Type
		for _, f := range t.Fields {
			out = append(out, leaves(f.Type)...)
		}
		return out
	}
	return nil
}
