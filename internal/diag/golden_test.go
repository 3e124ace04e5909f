package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pryimak2/noir/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/src/main.nr", []byte("a\nb\n"), 0)
	stdFile := fs.AddVirtual("std/lib.nr", []byte("x\n"))

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: stdFile, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		NewWarning(ResUnusedVariable, source.Span{File: userFile, Start: 2, End: 3}, "unused variable x"),
	}

	expected := "error SYN1001 src/main.nr:1:1 first line second\n" +
		"note SYN1001 src/main.nr:2:1 note line\n" +
		"warning RES2006 src/main.nr:2:1 unused variable x"

	assert.Equal(t, expected, FormatGoldenDiagnostics(diags, fs, true))
}

func TestFormatShortKeepsStdAndUnknown(t *testing.T) {
	fs := source.NewFileSet()
	stdFile := fs.AddVirtual("std/lib.nr", []byte("x\n"))

	diags := []Diagnostic{
		Simple(DrvNoMain, "crate has no main function"),
		NewError(TypMismatch, source.Span{File: stdFile, Start: 0, End: 1}, "bad"),
	}

	got := FormatShortDiagnostics(diags, fs, false)
	assert.Equal(t, "error DRV4001 <unknown>:0:0 crate has no main function\n"+
		"error TYP3001 std/lib.nr:1:1 bad", got)
}

func TestHasErrorsPolicy(t *testing.T) {
	warn := NewWarning(ResUnusedVariable, source.Span{}, "unused")
	err := NewError(TypMismatch, source.Span{}, "mismatch")

	assert.False(t, HasErrors(nil, true))
	assert.False(t, HasErrors([]Diagnostic{warn}, false))
	assert.True(t, HasErrors([]Diagnostic{warn}, true))
	assert.True(t, HasErrors([]Diagnostic{warn, err}, false))
	assert.Equal(t, []Diagnostic{warn}, Warnings([]Diagnostic{warn, err}))
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	second := NewError(TypMismatch, source.Span{File: 1, Start: 5, End: 6}, "b")
	first := NewWarning(ResUnusedVariable, source.Span{File: 1, Start: 1, End: 2}, "a")
	b.Add(second)
	b.Add(first)
	b.Add(second)

	b.Dedup()
	b.Sort()
	assert.Equal(t, []Diagnostic{first, second}, b.Items())
	assert.True(t, b.HasErrors())
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	assert.True(t, b.Add(Simple(DrvNoMain, "x")))
	assert.False(t, b.Add(Simple(DrvNoMain, "y")))
	assert.Equal(t, 1, b.Len())
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 0, End: 1}
	ReportError(r, ResUnresolvedName, sp, "cannot find x").Emit()
	ReportError(r, ResUnresolvedName, sp, "cannot find x").Emit()
	ReportWarning(r, ResUnusedVariable, sp, "unused").WithNote(sp, "here").Emit()
	assert.Equal(t, 2, bag.Len())
	assert.Len(t, bag.Items()[1].Notes, 1)
}

func TestSeverityTags(t *testing.T) {
	tests := []struct {
		sev        Severity
		tag, label string
	}{
		{SevInfo, "INFO", "info"},
		{SevWarning, "WARNING", "warning"},
		{SevError, "ERROR", "error"},
		{Severity(9), "UNKNOWN", "info"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tag, tt.sev.String())
		assert.Equal(t, tt.label, tt.sev.Label())
	}
}
