package testkit

import (
	"fmt"

	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/stdlib"
)

// Session is a crate graph built from in-memory sources: the standard
// library plus a root crate registered as src/main.nr.
type Session struct {
	Files  *source.FileSet
	Graph  *dag.Graph
	Defs   *hir.Interner
	Stdlib dag.CrateID
	Root   dag.CrateID
}

// NewSession registers the standard library and a root crate holding src.
func NewSession(src string) *Session {
	s := &Session{
		Files: source.NewFileSet(),
		Graph: dag.New(),
		Defs:  hir.NewInterner(),
	}
	s.Stdlib = s.Graph.AddStdlib(stdlib.Register(s.Files))
	s.Root = s.AddCrate("src/main.nr", src)
	return s
}

// AddCrate registers a crate rooted at a virtual file and links it to the
// standard library.
func (s *Session) AddCrate(path, src string) dag.CrateID {
	id := s.Graph.AddCrate(s.Files.AddVirtual(path, []byte(src)))
	s.mustLink(id, dag.StdlibName, s.Stdlib)
	return id
}

// AddDependency registers a crate and makes it a dependency of the root
// crate under name.
func (s *Session) AddDependency(name, path, src string) dag.CrateID {
	id := s.AddCrate(path, src)
	s.mustLink(s.Root, dag.CrateName(name), id)
	return id
}

func (s *Session) mustLink(from dag.CrateID, name dag.CrateName, to dag.CrateID) {
	if err := s.Graph.AddDep(from, name, to); err != nil {
		panic(fmt.Errorf("testkit: %w", err))
	}
}

// File returns the file registered under path.
func (s *Session) File(path string) *source.File {
	f, ok := s.Files.GetByPath(path)
	if !ok {
		panic("testkit: unknown file " + path)
	}
	return f
}
