package diagfmt

import (
	"github.com/pryimak2/noir/internal/source"
)

const unknownPath = "<unknown>"

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if !fs.Has(id) {
		return unknownPath
	}
	f := fs.Get(id)
	if f.Flags&source.FileVirtual != 0 {
		return f.Path
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
