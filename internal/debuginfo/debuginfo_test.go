package debuginfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimak2/noir/internal/source"
)

func TestFilterRelevantFiles(t *testing.T) {
	fs := source.NewFileSet()
	std := fs.AddVirtual("std/lib.nr", []byte("fn square(x: Field) -> Field { x * x }\n"))
	unused := fs.AddVirtual("dep/lib.nr", []byte("fn unused() {}\n"))
	main := fs.AddVirtual("src/main.nr", []byte("fn main(x: Field) -> pub Field { std::square(x) }\n"))

	a := &DebugInfo{}
	a.Add(0, []source.Span{{File: main, Start: 33, End: 47}, {File: std, Start: 31, End: 36}})
	b := &DebugInfo{}
	b.Add(0, []source.Span{{File: main, Start: 0, End: 2}})
	b.Add(1, []source.Span{{File: source.NoFileID}})

	files := FilterRelevantFiles([]*DebugInfo{b, nil, a}, fs)
	require.Len(t, files, 2)
	assert.Equal(t, std, files[0].ID)
	assert.Equal(t, "std/lib.nr", files[0].Path)
	assert.Equal(t, main, files[1].ID)
	assert.Contains(t, files[1].Source, "fn main")
	for _, f := range files {
		assert.NotEqual(t, unused, f.ID)
	}
}

func TestRemap(t *testing.T) {
	d := &DebugInfo{}
	d.Add(0, []source.Span{{File: 1, Start: 0, End: 1}})
	d.Add(1, []source.Span{{File: 1, Start: 5, End: 6}})
	d.Add(2, []source.Span{{File: 1, Start: 9, End: 10}})

	// opcode 0 dropped, opcode 2 split in two, one new opcode without source
	out := d.Remap([]int{1, 2, 2, -1})
	require.Len(t, out.Locations, 3)

	stack, ok := out.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, uint32(5), stack[0].Start)
	stack, ok = out.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, uint32(9), stack[0].Start)
	_, ok = out.Lookup(3)
	assert.False(t, ok)
}
