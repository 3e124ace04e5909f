package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/source"
)

type palette struct {
	err, warn, info, note, dim, bold, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan),
		note:  color.New(color.FgBlue),
		dim:   color.New(color.Faint),
		bold:  color.New(color.Bold),
		caret: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.dim, p.bold, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics in a human readable form. For each diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with a ^~~~ underline under the span, then the
// notes in the same format. Diagnostics on the default file print only the
// header.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i := range diags {
		prettyOne(w, &diags[i], fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	path := formatPath(fs, d.Primary.File, opts.PathMode)
	start, _ := fs.Resolve(d.Primary)

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		p.bold.Sprint(path), start.Line, start.Col,
		p.severity(d.Severity).Sprint(d.Severity.String()),
		d.Code.ID(), d.Message)
	writeSnippet(w, fs, d.Primary, opts, p, p.severity(d.Severity))

	if !opts.ShowNotes {
		return
	}
	for _, note := range d.Notes {
		npath := formatPath(fs, note.Span.File, opts.PathMode)
		nstart, _ := fs.Resolve(note.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), npath, nstart.Line, nstart.Col, note.Msg)
		writeSnippet(w, fs, note.Span, opts, p, p.note)
	}
}

func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, p palette, marker *color.Color) {
	if !fs.Has(span.File) {
		return
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}

	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	gutter := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		if int(ln) > len(f.LineIdx)+1 {
			break
		}
		text := f.GetLine(ln)
		fmt.Fprintf(w, "%s %s %s\n", p.dim.Sprintf("%*d", gutter, ln), p.dim.Sprint("|"), clip(text, opts.Width))
		if ln != start.Line {
			continue
		}
		endCol := end.Col
		if end.Line != start.Line {
			endCol = uint32(len(text)) + 1 // #nosec G115 -- line length bounded by file size
		}
		fmt.Fprintf(w, "%s %s %s\n", strings.Repeat(" ", gutter), p.dim.Sprint("|"), marker.Sprint(underline(text, start.Col, endCol)))
	}
}

// underline builds "^~~~" under the byte columns [startCol, endCol) of line,
// measuring display width so wide runes and tabs stay aligned.
func underline(line string, startCol, endCol uint32) string {
	s := int(startCol) - 1
	e := int(endCol) - 1
	s = min(max(s, 0), len(line))
	e = min(max(e, s), len(line))

	var pad strings.Builder
	for _, r := range line[:s] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(line[s:e])
	if width <= 1 {
		return pad.String() + "^"
	}
	return pad.String() + "^" + strings.Repeat("~", width-1)
}

func clip(line string, width uint8) string {
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "…")
}
