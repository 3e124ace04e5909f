package circuit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Circuit is the lowered form of one entry function.
type Circuit struct {
	// CurrentWitness is the highest witness index in use.
	CurrentWitness Witness   `msgpack:"current_witness"`
	Opcodes        []Opcode  `msgpack:"opcodes"`
	PrivateParams  []Witness `msgpack:"private_params"`
	PublicParams   []Witness `msgpack:"public_params"`
	ReturnValues   []Witness `msgpack:"return_values"`
}

// NewWitness allocates the next witness index.
func (c *Circuit) NewWitness() Witness {
	c.CurrentWitness++
	return c.CurrentWitness
}

// Emit appends op and returns its index.
func (c *Circuit) Emit(op Opcode) int {
	c.Opcodes = append(c.Opcodes, op)
	return len(c.Opcodes) - 1
}

// Bytes is the deterministic binary encoding of c.
func (c *Circuit) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode circuit: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses bytes produced by Bytes.
func Decode(data []byte) (*Circuit, error) {
	var c Circuit
	if err := msgpack.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode circuit: %w", err)
	}
	return &c, nil
}

// Clone returns a deep copy of c that shares no slices with it.
func (c *Circuit) Clone() *Circuit {
	data, err := c.Bytes()
	if err != nil {
		panic(err)
	}
	out, err := Decode(data)
	if err != nil {
		panic(err)
	}
	return out
}

func (c *Circuit) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "current witness index : %s\n", c.CurrentWitness)
	fmt.Fprintf(&sb, "private parameters indices : %s\n", witnessList(c.PrivateParams))
	fmt.Fprintf(&sb, "public parameters indices : %s\n", witnessList(c.PublicParams))
	fmt.Fprintf(&sb, "return value indices : %s\n", witnessList(c.ReturnValues))
	for _, op := range c.Opcodes {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
