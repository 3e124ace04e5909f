package sema

import (
	"errors"
	"math/big"
	"slices"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/pryimak2/noir/internal/hir"
	"github.com/pryimak2/noir/internal/types"
)

var (
	errBadLiteral    = errors.New("invalid integer literal")
	errLiteralRange  = errors.New("literal out of range")
	fieldModulus     = fr.Modulus()
	maxUint64Literal = new(big.Int).SetUint64(^uint64(0))
)

// parseIntLit parses a decimal or 0x-prefixed hexadecimal literal. Leading
// zeros never switch to octal.
func parseIntLit(text string) (*big.Int, error) {
	text = strings.ReplaceAll(text, "_", "")
	base := 10
	if rest, ok := strings.CutPrefix(text, "0x"); ok {
		text, base = rest, 16
	}
	v, ok := new(big.Int).SetString(text, base)
	if !ok || v.Sign() < 0 {
		return nil, errBadLiteral
	}
	return v, nil
}

func parseUint64(text string) (uint64, error) {
	v, err := parseIntLit(text)
	if err != nil {
		return 0, err
	}
	if v.Cmp(maxUint64Literal) > 0 {
		return 0, errLiteralRange
	}
	return v.Uint64(), nil
}

// fitsType reports whether the literal v is a value of t. Field literals
// must be below the field modulus.
func fitsType(v *big.Int, t *types.Type) bool {
	switch t.Kind {
	case types.KindUint:
		return v.BitLen() <= int(t.Width)
	case types.KindField:
		return v.Cmp(fieldModulus) < 0
	}
	return true
}

func sortedImportNames(imports map[string]hir.Import) []string {
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
