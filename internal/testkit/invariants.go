// Package testkit holds helpers shared by package tests: span invariant
// checks for parsed files and in-memory compilation sessions.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/pryimak2/noir/internal/ast"
	"github.com/pryimak2/noir/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span is non-empty and within file content bounds
// 2) every item span is non-empty and fully contained in file.Span
// 3) file.Span covers the union of item spans (if any items exist)
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}

	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	var union source.Span
	var haveItem bool
	for _, sp := range itemSpans(f) {
		if sp.End <= sp.Start {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}
		if !haveItem {
			union = sp
			haveItem = true
		} else {
			union = union.Cover(sp)
		}
	}

	if haveItem && (union.Start < f.Span.Start || union.End > f.Span.End) {
		return fmt.Errorf("file span %v does not cover union of items %v", f.Span, union)
	}
	return nil
}

func itemSpans(f *ast.File) []source.Span {
	var out []source.Span
	for _, u := range f.Uses {
		out = append(out, u.Span)
	}
	for _, s := range f.Structs {
		out = append(out, s.Span)
	}
	for _, fn := range f.Funcs {
		out = append(out, fn.Span)
	}
	for _, c := range f.Contracts {
		out = append(out, c.Span)
	}
	return out
}
