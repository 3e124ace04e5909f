package mono

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Encode returns the canonical encoding of p.
func (p *Program) Encode() ([]byte, error) {
	return msgpack.Marshal(p)
}

// Hash is the 64-bit content hash of the canonical encoding. Equal programs
// hash equally across runs and machines.
func (p *Program) Hash() uint64 {
	b, err := p.Encode()
	if err != nil {
		panic(fmt.Errorf("encode program: %w", err))
	}
	return xxhash.Sum64(b)
}
