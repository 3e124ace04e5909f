package source

import (
	"path/filepath"
	"slices"
)

// normalizeCRLF replaces every \r\n with \n and leaves lone \r alone.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// toLineCol maps a byte offset to a 1-based position. lineIdx holds the
// offsets of every '\n' in the file.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// number of newlines strictly before off
	n, _ := slices.BinarySearch(lineIdx, off)

	var startOff uint32
	if n > 0 {
		startOff = lineIdx[n-1] + 1
	}
	return LineCol{Line: uint32(n + 1), Col: off - startOff + 1} // #nosec G115 -- n <= len(content)
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
