// Package debuginfo maps circuit opcodes back to the source that produced
// them.
package debuginfo

import (
	"slices"

	"github.com/pryimak2/noir/internal/source"
)

// OpcodeLocation is the call stack, outermost call first, of one opcode.
type OpcodeLocation struct {
	Opcode    int           `msgpack:"opcode"`
	CallStack []source.Span `msgpack:"call_stack"`
}

// DebugInfo holds the locations of the opcodes of one circuit, in opcode
// order.
type DebugInfo struct {
	Locations []OpcodeLocation `msgpack:"locations"`
}

// Add records the call stack of opcode.
func (d *DebugInfo) Add(opcode int, stack []source.Span) {
	d.Locations = append(d.Locations, OpcodeLocation{Opcode: opcode, CallStack: slices.Clone(stack)})
}

// Lookup returns the call stack of opcode.
func (d *DebugInfo) Lookup(opcode int) ([]source.Span, bool) {
	i, ok := slices.BinarySearchFunc(d.Locations, opcode, func(l OpcodeLocation, op int) int {
		return l.Opcode - op
	})
	if !ok {
		return nil, false
	}
	return d.Locations[i].CallStack, true
}

// Remap rewrites locations after the opcodes were rearranged: origin[i] is
// the index of the old opcode that new opcode i came from, or -1 when it has
// no source.
func (d *DebugInfo) Remap(origin []int) *DebugInfo {
	out := &DebugInfo{}
	for i, old := range origin {
		if old < 0 {
			continue
		}
		if stack, ok := d.Lookup(old); ok {
			out.Add(i, stack)
		}
	}
	return out
}

// Files returns the distinct files referenced by d.
func (d *DebugInfo) Files() []source.FileID {
	var out []source.FileID
	for _, l := range d.Locations {
		for _, sp := range l.CallStack {
			if sp.File != source.NoFileID {
				out = append(out, sp.File)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// DebugFile is a source file referenced by debug info.
type DebugFile struct {
	ID     source.FileID `msgpack:"id"`
	Path   string        `msgpack:"path"`
	Source string        `msgpack:"source"`
}

// FilterRelevantFiles returns, ordered by id, the files that any of infos
// references. Files the set does not know are skipped.
func FilterRelevantFiles(infos []*DebugInfo, fs *source.FileSet) []DebugFile {
	var ids []source.FileID
	for _, info := range infos {
		if info != nil {
			ids = append(ids, info.Files()...)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	out := make([]DebugFile, 0, len(ids))
	for _, id := range ids {
		if !fs.Has(id) {
			continue
		}
		f := fs.Get(id)
		out = append(out, DebugFile{ID: id, Path: f.Path, Source: string(f.Content)})
	}
	return out
}
