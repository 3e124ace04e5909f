package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/driver"
)

var log = commonlog.GetLogger("nargo.artifact")

// SaveProgram writes the program artifact of p to path and its debug
// artifact to debugPath.
func SaveProgram(path, debugPath string, p *driver.CompiledProgram, backend string) error {
	pre, err := PreprocessProgram(p, backend)
	if err != nil {
		return fmt.Errorf("save program %s: %w", path, err)
	}
	if err := writeFile(path, pre); err != nil {
		return fmt.Errorf("save program %s: %w", path, err)
	}
	if err := writeFile(debugPath, ProgramDebug(p)); err != nil {
		return fmt.Errorf("save debug artifact %s: %w", debugPath, err)
	}
	return nil
}

// SaveContract writes the contract artifact of c to path and its debug
// artifact to debugPath.
func SaveContract(path, debugPath string, c *driver.CompiledContract, backend string) error {
	pre, err := PreprocessContract(c, backend)
	if err != nil {
		return fmt.Errorf("save contract %s: %w", path, err)
	}
	if err := writeFile(path, pre); err != nil {
		return fmt.Errorf("save contract %s: %w", path, err)
	}
	if err := writeFile(debugPath, ContractDebug(c)); err != nil {
		return fmt.Errorf("save debug artifact %s: %w", debugPath, err)
	}
	return nil
}

// ReadProgram loads a program artifact.
func ReadProgram(path string) (*PreprocessedProgram, error) {
	var p PreprocessedProgram
	if err := readFile(path, &p); err != nil {
		return nil, err
	}
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w: %d", path, ErrSchemaMismatch, p.Schema)
	}
	return &p, nil
}

// ReadContract loads a contract artifact.
func ReadContract(path string) (*PreprocessedContract, error) {
	var c PreprocessedContract
	if err := readFile(path, &c); err != nil {
		return nil, err
	}
	if c.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w: %d", path, ErrSchemaMismatch, c.Schema)
	}
	return &c, nil
}

// ReadDebug loads a debug artifact.
func ReadDebug(path string) (*DebugArtifact, error) {
	var d DebugArtifact
	if err := readFile(path, &d); err != nil {
		return nil, err
	}
	if d.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w: %d", path, ErrSchemaMismatch, d.Schema)
	}
	return &d, nil
}

// LoadCachedProgram rebuilds a compiled program from its program and debug
// artifacts. A missing, stale or unreadable artifact is not an error: it
// yields nil, and the package is compiled from scratch.
func LoadCachedProgram(path, debugPath string) *driver.CompiledProgram {
	prog, err := loadProgram(path, debugPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Infof("ignoring cached artifact %s: %s", path, err)
		}
		return nil
	}
	return prog
}

func loadProgram(path, debugPath string) (*driver.CompiledProgram, error) {
	pre, err := ReadProgram(path)
	if err != nil {
		return nil, err
	}
	dbg, err := ReadDebug(debugPath)
	if err != nil {
		return nil, err
	}
	if len(dbg.DebugSymbols) != 1 {
		return nil, fmt.Errorf("debug artifact has %d symbol tables", len(dbg.DebugSymbols))
	}
	c, err := circuit.Decode(pre.Bytecode)
	if err != nil {
		return nil, err
	}
	return &driver.CompiledProgram{
		Hash:     pre.Hash,
		Circuit:  c,
		ABI:      pre.ABI,
		Debug:    dbg.DebugSymbols[0],
		FileMap:  dbg.FileMap,
		Version:  pre.Version,
		Warnings: dbg.Warnings,
	}, nil
}

// writeFile replaces path atomically: readers see the old file or the new
// one, never a partial write.
func writeFile(path string, v any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	enc := msgpack.NewEncoder(f)
	enc.UseCompactInts(true)
	if err = enc.Encode(v); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func readFile(path string, v any) error {
	// #nosec G304 -- artifacts live in the package target directory
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
