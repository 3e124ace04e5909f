package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pryimak2/noir/internal/parser"
	"github.com/pryimak2/noir/internal/source"
)

func TestStdlibParses(t *testing.T) {
	fs := source.NewFileSet()
	id := Register(fs)
	assert.Equal(t, id, Register(fs))

	file, diags := parser.ParseFile(fs, id)
	assert.Empty(t, diags)
	if assert.NotNil(t, file) {
		var names []string
		for _, f := range file.Funcs {
			names = append(names, f.Name.Name)
		}
		assert.Equal(t, []string{"sum", "square", "assert_eq", "inverse_hint", "inverse"}, names)
	}
}
