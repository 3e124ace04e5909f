package driver

import (
	"fmt"

	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/source"
)

// PrepareCrate registers the file at path as the root crate. An unreadable
// root file means the driver was misused and panics; TryPrepareCrate returns
// the error instead.
func PrepareCrate(ctx *Context, path string) dag.CrateID {
	id, err := TryPrepareCrate(ctx, path)
	if err != nil {
		panic(err)
	}
	return id
}

// TryPrepareCrate is PrepareCrate returning errors.
func TryPrepareCrate(ctx *Context, path string) (dag.CrateID, error) {
	file, err := ctx.Files.AddFile(path)
	if err != nil {
		return 0, fmt.Errorf("read crate root %s: %w", path, err)
	}
	return addCrate(ctx, file)
}

// PrepareDependency registers the file at path as a dependency crate. Like
// every crate except the standard library it depends on std.
func PrepareDependency(ctx *Context, path string) dag.CrateID {
	return PrepareCrate(ctx, path)
}

// TryPrepareDependency is PrepareDependency returning errors.
func TryPrepareDependency(ctx *Context, path string) (dag.CrateID, error) {
	return TryPrepareCrate(ctx, path)
}

// PrepareSource registers an in-memory crate root.
func PrepareSource(ctx *Context, path string, src []byte) dag.CrateID {
	id, err := addCrate(ctx, ctx.Files.AddVirtual(path, src))
	if err != nil {
		panic(err)
	}
	return id
}

func addCrate(ctx *Context, file source.FileID) (dag.CrateID, error) {
	id := ctx.Graph.AddCrate(file)
	if err := TryAddDep(ctx, id, ctx.stdlib, dag.StdlibName); err != nil {
		return 0, err
	}
	return id, nil
}

// AddDep makes to a dependency of from under name. Adding the same edge twice
// is a no-op; an edge that closes a cycle panics.
func AddDep(ctx *Context, from, to dag.CrateID, name dag.CrateName) {
	if err := TryAddDep(ctx, from, to, name); err != nil {
		panic(err)
	}
}

// TryAddDep is AddDep returning errors.
func TryAddDep(ctx *Context, from, to dag.CrateID, name dag.CrateName) error {
	if err := ctx.Graph.AddDep(from, name, to); err != nil {
		return fmt.Errorf("add dependency %q: %w", name, err)
	}
	return nil
}
