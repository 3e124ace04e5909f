package dag

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"

	"github.com/pryimak2/noir/internal/source"
)

// CrateID identifies a crate within one Graph.
type CrateID uint32

// CrateName is the name a dependent crate uses for a dependency.
type CrateName string

// StdlibName is the reserved name every crate uses for the standard library.
const StdlibName CrateName = "std"

var (
	// ErrCyclicDependency is returned when an edge would close a cycle.
	ErrCyclicDependency = errors.New("cyclic crate dependency")
	// ErrSelfDependency is returned for an edge from a crate to itself.
	ErrSelfDependency = errors.New("crate depends on itself")
	// ErrDuplicateName is returned when a name is already bound to another crate.
	ErrDuplicateName = errors.New("dependency name already used")
	// ErrUnknownCrate is returned for ids that are not part of the graph.
	ErrUnknownCrate = errors.New("unknown crate")
)

// Dependency is an outgoing edge of a crate.
type Dependency struct {
	Crate CrateID
	Name  CrateName
}

// CrateData is a node of the graph.
type CrateData struct {
	RootFile source.FileID
	Deps     []Dependency
	IsStdlib bool
}

// Graph is the crate dependency graph of one compilation session. It stays
// acyclic: AddDep refuses edges that would close a cycle.
type Graph struct {
	crates []CrateData
	byRoot map[source.FileID]CrateID
	stdlib CrateID
	hasStd bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{byRoot: make(map[source.FileID]CrateID)}
}

// AddCrate registers a crate rooted at root. A root file that already
// belongs to a crate yields that crate's id.
func (g *Graph) AddCrate(root source.FileID) CrateID {
	if id, ok := g.byRoot[root]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(g.crates))
	if err != nil {
		panic(fmt.Errorf("crate id overflow: %w", err))
	}
	id := CrateID(n)
	g.crates = append(g.crates, CrateData{RootFile: root})
	g.byRoot[root] = id
	return id
}

// AddStdlib registers the standard library crate.
func (g *Graph) AddStdlib(root source.FileID) CrateID {
	id := g.AddCrate(root)
	g.crates[id].IsStdlib = true
	g.stdlib = id
	g.hasStd = true
	return id
}

// Stdlib returns the standard library crate, if registered.
func (g *Graph) Stdlib() (CrateID, bool) {
	return g.stdlib, g.hasStd
}

// Has reports whether id is part of the graph.
func (g *Graph) Has(id CrateID) bool {
	return int(id) < len(g.crates)
}

// Len returns the number of crates.
func (g *Graph) Len() int {
	return len(g.crates)
}

// Crate returns the node for id. It panics for unknown ids.
func (g *Graph) Crate(id CrateID) *CrateData {
	return &g.crates[id]
}

// Deps returns the dependencies of id in insertion order.
func (g *Graph) Deps(id CrateID) []Dependency {
	if !g.Has(id) {
		return nil
	}
	return g.crates[id].Deps
}

// DepByName finds the dependency of from bound to name.
func (g *Graph) DepByName(from CrateID, name CrateName) (CrateID, bool) {
	for _, d := range g.Deps(from) {
		if d.Name == name {
			return d.Crate, true
		}
	}
	return 0, false
}

// AddDep adds the edge from -> to under name. Re-adding an identical edge is
// a no-op, so the edge set never holds duplicates.
func (g *Graph) AddDep(from CrateID, name CrateName, to CrateID) error {
	if !g.Has(from) || !g.Has(to) {
		return fmt.Errorf("%w: %d -> %d", ErrUnknownCrate, from, to)
	}
	if from == to {
		return fmt.Errorf("%w: crate %d (%q)", ErrSelfDependency, from, name)
	}
	for _, d := range g.crates[from].Deps {
		if d.Name != name {
			continue
		}
		if d.Crate == to {
			return nil
		}
		return fmt.Errorf("%w: %q is bound to crate %d", ErrDuplicateName, name, d.Crate)
	}
	if path := g.path(to, from); path != nil {
		return fmt.Errorf("%w: %s", ErrCyclicDependency, formatPath(append([]CrateID{from}, path...)))
	}
	g.crates[from].Deps = append(g.crates[from].Deps, Dependency{Crate: to, Name: name})
	return nil
}

// path returns a dependency path start -> ... -> target, or nil.
func (g *Graph) path(start, target CrateID) []CrateID {
	seen := make([]bool, len(g.crates))
	var walk func(id CrateID) []CrateID
	walk = func(id CrateID) []CrateID {
		if id == target {
			return []CrateID{id}
		}
		if seen[id] {
			return nil
		}
		seen[id] = true
		for _, d := range g.crates[id].Deps {
			if rest := walk(d.Crate); rest != nil {
				return append([]CrateID{id}, rest...)
			}
		}
		return nil
	}
	return walk(start)
}

// Dependents returns the crates that depend directly on id, sorted.
func (g *Graph) Dependents(id CrateID) []CrateID {
	var out []CrateID
	for i := range g.crates {
		for _, d := range g.crates[i].Deps {
			if d.Crate == id {
				out = append(out, CrateID(i)) // #nosec G115 -- len checked in AddCrate
				break
			}
		}
	}
	slices.Sort(out)
	return out
}

func formatPath(ids []CrateID) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += " -> "
		}
		s += fmt.Sprint(id)
	}
	return s
}
