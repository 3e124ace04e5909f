package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/driver"
)

func compileProgram(t *testing.T, src string) *driver.CompiledProgram {
	t.Helper()
	ctx := driver.NewContext("1.2.3+test")
	root := driver.PrepareSource(ctx, "src/main.nr", []byte(src))
	prog, _, err := driver.CompileMain(ctx, root, driver.CompileOptions{Output: &bytes.Buffer{}}, nil, false)
	require.NoError(t, err)
	return prog
}

func paths(dir, name string) (string, string) {
	return filepath.Join(dir, name+".msgpack"), filepath.Join(dir, "debug_"+name+".msgpack")
}

func TestProgramRoundTrip(t *testing.T) {
	prog := compileProgram(t, `
fn main(x: u8, y: pub u8) -> pub u8 {
    assert(2 == 2);
    x * y
}
`)
	require.Len(t, prog.Warnings, 1)
	assert.Equal(t, diag.CirAlwaysTrue, prog.Warnings[0].Code)
	dir := t.TempDir()
	path, debugPath := paths(dir, "hello")
	require.NoError(t, SaveProgram(path, debugPath, prog, "plonk-bn254"))

	pre, err := ReadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, prog.Hash, pre.Hash)
	assert.Equal(t, "plonk-bn254", pre.Backend)
	assert.Equal(t, "1.2.3+test", pre.Version)
	assert.Equal(t, prog.ABI, pre.ABI)

	loaded := LoadCachedProgram(path, debugPath)
	require.NotNil(t, loaded)
	assert.Equal(t, prog.Hash, loaded.Hash)
	assert.Equal(t, prog.Version, loaded.Version)
	assert.Equal(t, prog.FileMap, loaded.FileMap)
	assert.Equal(t, prog.Warnings, loaded.Warnings)
	assert.Equal(t, prog.Debug, loaded.Debug)

	want, err := prog.Circuit.Bytes()
	require.NoError(t, err)
	got, err := loaded.Circuit.Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, prog.Circuit.String(), loaded.Circuit.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"hello.msgpack", "debug_hello.msgpack"}, names, "no temp files are left behind")
}

func TestLoadedProgramIsACacheHit(t *testing.T) {
	src := `fn main(x: Field) -> pub Field { x * x }`
	path, debugPath := paths(t.TempDir(), "sq")
	require.NoError(t, SaveProgram(path, debugPath, compileProgram(t, src), "plonk-bn254"))
	cached := LoadCachedProgram(path, debugPath)
	require.NotNil(t, cached)

	ctx := driver.NewContext("1.2.3+test")
	root := driver.PrepareSource(ctx, "src/main.nr", []byte(src))
	prog, _, err := driver.CompileMain(ctx, root, driver.CompileOptions{Output: &bytes.Buffer{}}, cached, false)
	require.NoError(t, err)
	assert.Same(t, cached, prog)
}

func TestLoadCachedProgramMissingOrStale(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, LoadCachedProgram(paths(dir, "absent")))

	stale, err := msgpack.Marshal(&PreprocessedProgram{Schema: SchemaVersion + 1})
	require.NoError(t, err)
	old, oldDebug := paths(dir, "old")
	require.NoError(t, os.WriteFile(old, stale, 0o600))
	_, err = ReadProgram(old)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Nil(t, LoadCachedProgram(old, oldDebug))

	junk, junkDebug := paths(dir, "junk")
	require.NoError(t, os.WriteFile(junk, []byte("not msgpack"), 0o600))
	assert.Nil(t, LoadCachedProgram(junk, junkDebug))
}

func TestContractRoundTrip(t *testing.T) {
	ctx := driver.NewContext("1.2.3+test")
	root := driver.PrepareSource(ctx, "src/main.nr", []byte(`
contract Token {
    #[event] struct Transfer { from: Field, amount: u64 }
    open fn transfer(a: Field) -> Field { a }
    #[internal] secret fn mint(a: u64) -> u64 { a }
    open unconstrained fn peek(a: Field) -> Field { a }
}
`))
	contract, _, err := driver.CompileContract(ctx, root, driver.CompileOptions{Output: &bytes.Buffer{}})
	require.NoError(t, err)

	path, debugPath := paths(filepath.Join(t.TempDir(), "target"), "token-Token")
	require.NoError(t, SaveContract(path, debugPath, contract, "plonk-bn254"))

	pre, err := ReadContract(path)
	require.NoError(t, err)
	assert.Equal(t, "Token", pre.Name)
	assert.Equal(t, "1.2.3+test", pre.Version)
	require.Len(t, pre.Functions, 3)
	assert.Equal(t, driver.Open, pre.Functions[0].Type)
	assert.Equal(t, driver.Secret, pre.Functions[1].Type)
	assert.True(t, pre.Functions[1].IsInternal)
	assert.Equal(t, driver.Unconstrained, pre.Functions[2].Type)
	assert.Equal(t, contract.Events, pre.Events)

	dbg, err := ReadDebug(debugPath)
	require.NoError(t, err)
	assert.Len(t, dbg.DebugSymbols, 3)
	assert.Equal(t, contract.FileMap, dbg.FileMap)
}
