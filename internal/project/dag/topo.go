package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is a dependency order of the crates reachable from a root.
type Topo struct {
	Order   []CrateID   // dependencies before dependents
	Batches [][]CrateID // waves of crates whose dependencies are all in earlier waves
}

// ToposortKahn orders the crates reachable from root so that every crate
// comes after all of its dependencies.
func (g *Graph) ToposortKahn(root CrateID) *Topo {
	nodeCount := len(g.crates)
	present := make([]bool, nodeCount)
	var mark func(CrateID)
	mark = func(id CrateID) {
		if present[id] {
			return
		}
		present[id] = true
		for _, d := range g.crates[id].Deps {
			mark(d.Crate)
		}
	}
	if g.Has(root) {
		mark(root)
	}

	// indeg counts unresolved dependencies.
	indeg := make([]int, nodeCount)
	dependents := make([][]CrateID, nodeCount)
	for i := range nodeCount {
		if !present[i] {
			continue
		}
		from, err := safecast.Conv[CrateID](i)
		if err != nil {
			panic(fmt.Errorf("crate id overflow: %w", err))
		}
		seen := make(map[CrateID]struct{}, len(g.crates[i].Deps))
		for _, d := range g.crates[i].Deps {
			if _, dup := seen[d.Crate]; dup {
				continue
			}
			seen[d.Crate] = struct{}{}
			indeg[i]++
			dependents[d.Crate] = append(dependents[d.Crate], from)
		}
	}

	topo := &Topo{Order: make([]CrateID, 0, nodeCount)}
	current := make([]CrateID, 0, nodeCount)
	for i := range nodeCount {
		if present[i] && indeg[i] == 0 {
			current = append(current, CrateID(i)) // #nosec G115 -- checked above
		}
	}

	for len(current) > 0 {
		slices.Sort(current)
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]CrateID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range dependents[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		current = next
	}
	return topo
}
