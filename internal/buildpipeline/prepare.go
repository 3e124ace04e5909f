package buildpipeline

import (
	"fmt"

	"github.com/pryimak2/noir/internal/driver"
	"github.com/pryimak2/noir/internal/project"
	"github.com/pryimak2/noir/internal/project/dag"
)

// PreparePackage builds a fresh session for pkg: the standard library, the
// root crate and, recursively, one crate per distinct dependency package,
// linked under the names the manifests give them.
func PreparePackage(pkg *project.Package, version string) (*driver.Context, dag.CrateID, error) {
	ctx := driver.NewContext(version)
	root, err := driver.TryPrepareCrate(ctx, pkg.Entry)
	if err != nil {
		return nil, 0, fmt.Errorf("package %s: %w", pkg.Name, err)
	}
	crates := map[string]dag.CrateID{pkg.Root: root}
	if err := addDependencies(ctx, pkg, root, crates); err != nil {
		return nil, 0, fmt.Errorf("package %s: %w", pkg.Name, err)
	}
	return ctx, root, nil
}

func addDependencies(ctx *driver.Context, pkg *project.Package, from dag.CrateID, crates map[string]dag.CrateID) error {
	for _, dep := range pkg.Dependencies {
		id, seen := crates[dep.Package.Root]
		if !seen {
			var err error
			id, err = driver.TryPrepareDependency(ctx, dep.Package.Entry)
			if err != nil {
				return err
			}
			crates[dep.Package.Root] = id
			if err := addDependencies(ctx, dep.Package, id, crates); err != nil {
				return err
			}
		}
		if err := driver.TryAddDep(ctx, from, id, dag.CrateName(dep.Name)); err != nil {
			return err
		}
	}
	return nil
}
