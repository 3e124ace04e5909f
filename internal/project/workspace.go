package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrUnknownPackage is returned when a selected package is not a member.
	ErrUnknownPackage = errors.New("package not found in workspace")
	// ErrDependencyCycle is returned when path dependencies form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle between packages")
)

// Dependency is a named path dependency of a package.
type Dependency struct {
	Name    string
	Package *Package
}

// Package is one resolved Nargo.toml [package].
type Package struct {
	Name            string
	Kind            PackageKind
	Root            string // absolute package directory
	Entry           string // absolute path of the crate root file
	CompilerVersion string
	Dependencies    []Dependency // sorted by name
}

func (p *Package) IsBinary() bool   { return p.Kind == KindBinary }
func (p *Package) IsContract() bool { return p.Kind == KindContract }
func (p *Package) IsLibrary() bool  { return p.Kind == KindLibrary }

// Workspace is the set of packages a command operates on.
type Workspace struct {
	Root      string
	TargetDir string
	Members   []*Package
	Selected  []*Package
}

// Selection picks the members of a workspace to operate on.
type Selection struct {
	All     bool   // every member
	Package string // a single member by name
}

// ProgramArtifactPath returns target/<package>.msgpack.
func (w *Workspace) ProgramArtifactPath(pkg *Package) string {
	return filepath.Join(w.TargetDir, pkg.Name+".msgpack")
}

// ContractArtifactPath returns target/<package>-<contract>.msgpack.
func (w *Workspace) ContractArtifactPath(pkg *Package, contract string) string {
	return filepath.Join(w.TargetDir, pkg.Name+"-"+contract+".msgpack")
}

// DebugArtifactPath returns target/debug_<name>.msgpack.
func (w *Workspace) DebugArtifactPath(name string) string {
	return filepath.Join(w.TargetDir, "debug_"+name+".msgpack")
}

// ResolveWorkspace loads the manifest at tomlPath with all of its members and
// their path dependencies and applies sel.
func ResolveWorkspace(tomlPath string, sel Selection) (*Workspace, error) {
	abs, err := filepath.Abs(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", tomlPath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingManifest, abs)
		}
		return nil, err
	}
	cfg, err := loadConfig(abs)
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(abs)
	ws := &Workspace{Root: root, TargetDir: filepath.Join(root, "target")}
	l := &loader{cache: make(map[string]*Package)}

	var defaultPkg *Package
	if cfg.isWorkspace {
		for _, member := range cfg.Workspace.Members {
			dir := filepath.Join(root, filepath.FromSlash(member))
			pkg, err := l.load(dir)
			if err != nil {
				return nil, err
			}
			ws.Members = append(ws.Members, pkg)
			if member == cfg.Workspace.DefaultMember {
				defaultPkg = pkg
			}
		}
		if cfg.Workspace.DefaultMember != "" && defaultPkg == nil {
			return nil, fmt.Errorf("%w: %s: default-member %q is not a member", ErrInvalidManifest, abs, cfg.Workspace.DefaultMember)
		}
	} else {
		pkg, err := l.load(root)
		if err != nil {
			return nil, err
		}
		ws.Members = []*Package{pkg}
		defaultPkg = pkg
	}

	switch {
	case sel.Package != "":
		for _, pkg := range ws.Members {
			if pkg.Name == sel.Package {
				ws.Selected = []*Package{pkg}
			}
		}
		if ws.Selected == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPackage, sel.Package)
		}
	case sel.All || defaultPkg == nil:
		ws.Selected = ws.Members
	default:
		ws.Selected = []*Package{defaultPkg}
	}
	return ws, nil
}

type loader struct {
	cache   map[string]*Package
	loading []string
}

func (l *loader) load(dir string) (*Package, error) {
	dir = filepath.Clean(dir)
	if pkg, ok := l.cache[dir]; ok {
		return pkg, nil
	}
	if slices.Contains(l.loading, dir) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrDependencyCycle, strings.Join(l.loading, " -> "), dir)
	}
	l.loading = append(l.loading, dir)
	defer func() { l.loading = l.loading[:len(l.loading)-1] }()

	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingManifest, path)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.isWorkspace {
		return nil, fmt.Errorf("%w: %s: nested workspaces are not supported", ErrInvalidManifest, path)
	}

	kind, _ := parseKind(cfg.Package.Type)
	entry := strings.TrimSpace(cfg.Package.Entry)
	if entry == "" {
		entry = "src/main.nr"
		if kind == KindLibrary {
			entry = "src/lib.nr"
		}
	}
	pkg := &Package{
		Name:            cfg.Package.Name,
		Kind:            kind,
		Root:            dir,
		Entry:           filepath.Join(dir, filepath.FromSlash(entry)),
		CompilerVersion: cfg.Package.CompilerVersion,
	}

	names := make([]string, 0, len(cfg.Dependencies))
	for name := range cfg.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		depDir := cfg.Dependencies[name].Path
		if !filepath.IsAbs(depDir) {
			depDir = filepath.Join(dir, filepath.FromSlash(depDir))
		}
		dep, err := l.load(depDir)
		if err != nil {
			return nil, fmt.Errorf("%s: dependency %q: %w", path, name, err)
		}
		if !dep.IsLibrary() {
			return nil, fmt.Errorf("%w: %s: dependency %q is a %s package, only lib packages can be dependencies", ErrInvalidManifest, path, name, dep.Kind)
		}
		pkg.Dependencies = append(pkg.Dependencies, Dependency{Name: name, Package: dep})
	}

	l.cache[dir] = pkg
	return pkg, nil
}
