package project

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

var (
	// ErrMissingManifest is returned when no Nargo.toml can be found.
	ErrMissingManifest = errors.New("cannot find " + ManifestName)
	// ErrInvalidManifest wraps every manifest validation failure.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// PackageKind is the [package].type of a manifest.
type PackageKind uint8

const (
	KindBinary PackageKind = iota
	KindContract
	KindLibrary
)

func (k PackageKind) String() string {
	switch k {
	case KindBinary:
		return "bin"
	case KindContract:
		return "contract"
	case KindLibrary:
		return "lib"
	}
	return "unknown"
}

func parseKind(s string) (PackageKind, bool) {
	switch strings.TrimSpace(s) {
	case "", "bin":
		return KindBinary, true
	case "contract":
		return KindContract, true
	case "lib":
		return KindLibrary, true
	}
	return 0, false
}

type manifestConfig struct {
	Package      packageConfig               `toml:"package"`
	Dependencies map[string]dependencyConfig `toml:"dependencies"`
	Workspace    workspaceConfig             `toml:"workspace"`

	isWorkspace bool
}

type packageConfig struct {
	Name            string   `toml:"name"`
	Type            string   `toml:"type"`
	Entry           string   `toml:"entry"`
	Authors         []string `toml:"authors"`
	CompilerVersion string   `toml:"compiler_version"`
}

type dependencyConfig struct {
	Path string `toml:"path"`
	Git  string `toml:"git"`
	Tag  string `toml:"tag"`
}

type workspaceConfig struct {
	Members       []string `toml:"members"`
	DefaultMember string   `toml:"default-member"`
}

func loadConfig(path string) (manifestConfig, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return manifestConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	hasPackage := meta.IsDefined("package")
	cfg.isWorkspace = meta.IsDefined("workspace")
	switch {
	case hasPackage && cfg.isWorkspace:
		return manifestConfig{}, fmt.Errorf("%w: %s: [package] and [workspace] are mutually exclusive", ErrInvalidManifest, path)
	case !hasPackage && !cfg.isWorkspace:
		return manifestConfig{}, fmt.Errorf("%w: %s: missing [package] or [workspace]", ErrInvalidManifest, path)
	}
	if cfg.isWorkspace {
		if !meta.IsDefined("workspace", "members") || len(cfg.Workspace.Members) == 0 {
			return manifestConfig{}, fmt.Errorf("%w: %s: missing [workspace].members", ErrInvalidManifest, path)
		}
		return cfg, nil
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return manifestConfig{}, fmt.Errorf("%w: %s: missing [package].name", ErrInvalidManifest, path)
	}
	if !IsValidName(cfg.Package.Name) {
		return manifestConfig{}, fmt.Errorf("%w: %s: invalid package name %q", ErrInvalidManifest, path, cfg.Package.Name)
	}
	if _, ok := parseKind(cfg.Package.Type); !ok {
		return manifestConfig{}, fmt.Errorf("%w: %s: unknown package type %q", ErrInvalidManifest, path, cfg.Package.Type)
	}
	for name, dep := range cfg.Dependencies {
		if !IsValidName(name) {
			return manifestConfig{}, fmt.Errorf("%w: %s: invalid dependency name %q", ErrInvalidManifest, path, name)
		}
		if dep.Git != "" {
			return manifestConfig{}, fmt.Errorf("%w: %s: git dependency %q is not supported, use path", ErrInvalidManifest, path, name)
		}
		if strings.TrimSpace(dep.Path) == "" {
			return manifestConfig{}, fmt.Errorf("%w: %s: dependency %q has no path", ErrInvalidManifest, path, name)
		}
	}
	return cfg, nil
}

// IsValidName reports whether name can be used for a package or a
// dependency: ASCII letters, digits and '_', not starting with a digit,
// and not the reserved name "std".
func IsValidName(name string) bool {
	if name == "" || name == "std" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
