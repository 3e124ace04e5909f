package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSetReservesDefaultFile(t *testing.T) {
	fs := NewFileSet()

	assert.Equal(t, 0, fs.Len())
	assert.False(t, fs.Has(NoFileID))

	id := fs.AddVirtual("main.nr", []byte("fn main() {}"))
	assert.NotEqual(t, NoFileID, id)
	assert.True(t, fs.Has(id))
	assert.Equal(t, 1, fs.Len())
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.nr", []byte("hello world"), 0)
	id2 := fs.Add("test.nr", []byte("hello universe"), 0)
	require.NotEqual(t, id1, id2)

	latest, ok := fs.GetLatest("test.nr")
	require.True(t, ok)
	assert.Equal(t, id2, latest)
	assert.Equal(t, "hello world", string(fs.Get(id1).Content))
	assert.Equal(t, "hello universe", string(fs.Get(id2).Content))
}

func TestAddFileDeduplicatesByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.nr")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}\r\n"), 0o600))

	fs := NewFileSet()
	id1, err := fs.AddFile(path)
	require.NoError(t, err)
	id2, err := fs.AddFile(path)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	f := fs.Get(id1)
	assert.Equal(t, "fn main() {}\n", string(f.Content))
	assert.NotZero(t, f.Flags&FileNormalizedCRLF)
}

func TestAddFileMissingPath(t *testing.T) {
	fs := NewFileSet()
	_, err := fs.AddFile(filepath.Join(t.TempDir(), "missing.nr"))
	assert.Error(t, err)
}

func TestAddVirtualNormalizesNFC(t *testing.T) {
	fs := NewFileSet()
	// "e" + combining acute accent
	id := fs.AddVirtual("accent.nr", []byte("// cafe\u0301\n"))
	f := fs.Get(id)
	assert.Equal(t, "// caf\u00e9\n", string(f.Content))
	assert.NotZero(t, f.Flags&FileNormalizedNFC)
	assert.NotZero(t, f.Flags&FileVirtual)
}

func TestResolveLineColumn(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.nr", []byte("ab\ncd\nef"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	assert.Equal(t, LineCol{Line: 2, Col: 1}, start)
	assert.Equal(t, LineCol{Line: 2, Col: 3}, end)
	assert.Equal(t, "cd", fs.Get(id).GetLine(2))
	assert.Equal(t, "ef", fs.Get(id).GetLine(3))
	assert.Equal(t, "", fs.Get(id).GetLine(4))

	start, _ = fs.Resolve(Span{File: NoFileID})
	assert.Equal(t, LineCol{}, start)
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 2, End: 5}
	assert.Equal(t, Span{File: 1, Start: 2, End: 6}, a.Cover(b))
	assert.Equal(t, a, a.Cover(Span{File: 2, Start: 0, End: 10}))
	assert.Equal(t, uint32(2), a.Len())
}
