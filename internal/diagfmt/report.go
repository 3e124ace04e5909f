package diagfmt

import (
	"io"

	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/source"
)

// Format selects the rendering used by ReportAll.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
)

// ReportOpts configures ReportAll.
type ReportOpts struct {
	Format Format
	Pretty PrettyOpts
}

// ReportAll renders every diagnostic of one compilation unit. With
// silenceWarnings no warning is rendered; with denyWarnings warnings are
// rendered as errors. It never decides pass/fail; it returns the number of
// errors it rendered.
func ReportAll(w io.Writer, fs *source.FileSet, diags []diag.Diagnostic, denyWarnings, silenceWarnings bool, opts ReportOpts) int {
	visible := make([]diag.Diagnostic, 0, len(diags))
	errs := 0
	for _, d := range diags {
		if !d.IsError() {
			if silenceWarnings {
				continue
			}
			if denyWarnings {
				d = d.AsError()
			}
		}
		if d.IsError() {
			errs++
		}
		visible = append(visible, d)
	}
	if len(visible) == 0 {
		return 0
	}

	switch opts.Format {
	case FormatShort:
		if out := diag.FormatShortDiagnostics(visible, fs, opts.Pretty.ShowNotes); out != "" {
			_, _ = io.WriteString(w, out+"\n")
		}
	case FormatJSON:
		_ = JSON(w, visible, fs, JSONOpts{
			IncludePositions: true,
			PathMode:         opts.Pretty.PathMode,
			IncludeNotes:     opts.Pretty.ShowNotes,
		})
	default:
		Pretty(w, visible, fs, opts.Pretty)
	}
	return errs
}
