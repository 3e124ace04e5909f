// Package stdlib embeds the standard library crate that every crate of a
// session depends on under the name "std".
package stdlib

import (
	_ "embed"

	"github.com/pryimak2/noir/internal/source"
)

// Path is the virtual path the standard library is registered under.
// Diagnostics in golden output skip files below "std/".
const Path = "std/lib.nr"

//go:embed std/lib.nr
var libSource []byte

// Source returns the standard library text.
func Source() []byte {
	return libSource
}

// Register adds the standard library to fs as a virtual file.
func Register(fs *source.FileSet) source.FileID {
	return fs.AddVirtual(Path, libSource)
}
