// Package artifact stores compiled programs and contracts on disk and loads
// them back as the cache of the next compilation.
package artifact

import (
	"errors"
	"fmt"

	"github.com/pryimak2/noir/internal/abi"
	"github.com/pryimak2/noir/internal/debuginfo"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/driver"
)

// SchemaVersion is bumped whenever the layout of an artifact changes.
// Artifacts of another schema are treated as missing.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned when an artifact has another schema.
var ErrSchemaMismatch = errors.New("artifact schema mismatch")

// PreprocessedProgram is the on-disk form of a binary package.
type PreprocessedProgram struct {
	Schema   uint16   `msgpack:"schema"`
	Hash     uint64   `msgpack:"hash"`
	Backend  string   `msgpack:"backend"`
	ABI      *abi.ABI `msgpack:"abi"`
	Version  string   `msgpack:"noir_version"`
	Bytecode []byte   `msgpack:"bytecode"`
}

// PreprocessedFunction is one entry point of a PreprocessedContract.
type PreprocessedFunction struct {
	Name       string              `msgpack:"name"`
	Type       driver.FunctionType `msgpack:"function_type"`
	IsInternal bool                `msgpack:"is_internal"`
	ABI        *abi.ABI            `msgpack:"abi"`
	Bytecode   []byte              `msgpack:"bytecode"`
}

// PreprocessedContract is the on-disk form of a contract package.
type PreprocessedContract struct {
	Schema    uint16                 `msgpack:"schema"`
	Version   string                 `msgpack:"noir_version"`
	Name      string                 `msgpack:"name"`
	Backend   string                 `msgpack:"backend"`
	Functions []PreprocessedFunction `msgpack:"functions"`
	Events    []abi.ContractEvent    `msgpack:"events"`
}

// DebugArtifact holds what is needed to map opcodes back to source: one
// debug info per function and the sources they reference.
type DebugArtifact struct {
	Schema       uint16                 `msgpack:"schema"`
	DebugSymbols []*debuginfo.DebugInfo `msgpack:"debug_symbols"`
	FileMap      []debuginfo.DebugFile  `msgpack:"file_map"`
	Warnings     []diag.Diagnostic      `msgpack:"warnings"`
}

// PreprocessProgram converts p to its on-disk form.
func PreprocessProgram(p *driver.CompiledProgram, backend string) (*PreprocessedProgram, error) {
	bytecode, err := p.Circuit.Bytes()
	if err != nil {
		return nil, err
	}
	return &PreprocessedProgram{
		Schema:   SchemaVersion,
		Hash:     p.Hash,
		Backend:  backend,
		ABI:      p.ABI,
		Version:  p.Version,
		Bytecode: bytecode,
	}, nil
}

// PreprocessContract converts c to its on-disk form.
func PreprocessContract(c *driver.CompiledContract, backend string) (*PreprocessedContract, error) {
	out := &PreprocessedContract{
		Schema:  SchemaVersion,
		Version: c.Version,
		Name:    c.Name,
		Backend: backend,
		Events:  c.Events,
	}
	for _, f := range c.Functions {
		bytecode, err := f.Circuit.Bytes()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		out.Functions = append(out.Functions, PreprocessedFunction{
			Name:       f.Name,
			Type:       f.Type,
			IsInternal: f.IsInternal,
			ABI:        f.ABI,
			Bytecode:   bytecode,
		})
	}
	return out, nil
}

// ProgramDebug returns the debug artifact of p.
func ProgramDebug(p *driver.CompiledProgram) *DebugArtifact {
	return &DebugArtifact{
		Schema:       SchemaVersion,
		DebugSymbols: []*debuginfo.DebugInfo{p.Debug},
		FileMap:      p.FileMap,
		Warnings:     p.Warnings,
	}
}

// ContractDebug returns the debug artifact of c, one symbol table per
// function in function order.
func ContractDebug(c *driver.CompiledContract) *DebugArtifact {
	out := &DebugArtifact{
		Schema:   SchemaVersion,
		FileMap:  c.FileMap,
		Warnings: c.Warnings,
	}
	for _, f := range c.Functions {
		out.DebugSymbols = append(out.DebugSymbols, f.Debug)
	}
	return out
}
