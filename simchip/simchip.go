// Package simchip provides an in-memory SPI NOR flash chip for tests
// and bench runs without hardware. It answers the JEDEC ID and read
// commands the way a W25Q-style part does.
package simchip

import (
	"errors"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

const cmdBytes = 4 // opcode + 24-bit address

// Chip simulates a SPI NOR flash behind a full-duplex connection. It
// implements spi.Conn; wire it to a Flash together with a fake CS pin.
type Chip struct {
	id  [3]byte
	mem []byte

	// FailNext, when set, is returned by the next Tx call and then
	// cleared. Used to exercise bus-failure paths.
	FailNext error

	// LastTx records the written half of the most recent transaction
	// so tests can assert on command framing.
	LastTx []byte
}

// New returns a chip with the given JEDEC ID and size bytes of memory,
// filled with 0xFF like an erased part.
func New(id [3]byte, size int) *Chip {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Chip{id: id, mem: mem}
}

// SetBytes programs data into the simulated memory at addr.
func (c *Chip) SetBytes(addr uint32, data []byte) {
	copy(c.mem[addr:], data)
}

// Mem exposes the backing memory for content assertions.
func (c *Chip) Mem() []byte { return c.mem }

func (c *Chip) String() string { return "simchip" }

func (c *Chip) Duplex() conn.Duplex { return conn.Full }

// Tx answers one full-duplex transaction. The opcode is w[0]; bytes
// clocked past the command phase come from the simulated memory for
// the read command, the ID bytes for the identify command, and 0xFF
// otherwise, like a real part ignoring an unknown opcode.
func (c *Chip) Tx(w, r []byte) error {
	if c.FailNext != nil {
		err := c.FailNext
		c.FailNext = nil
		return err
	}
	if len(w) != len(r) {
		return errors.New("simchip: w/r length mismatch")
	}
	c.LastTx = append(c.LastTx[:0], w...)
	if len(w) == 0 {
		return nil
	}

	// Callers commonly pass the same slice as both halves, so filling
	// r may clobber w. Decode from the recorded copy.
	w = c.LastTx

	for i := range r {
		r[i] = 0xFF
	}

	switch w[0] {
	case 0x9F: // Read JEDEC ID
		for i := 0; i < 3 && 1+i < len(r); i++ {
			r[1+i] = c.id[i]
		}
	case 0x03: // Read Data
		if len(w) < cmdBytes {
			return nil
		}
		addr := uint32(w[1])<<16 | uint32(w[2])<<8 | uint32(w[3])
		for i := cmdBytes; i < len(r); i++ {
			// Reads wrap at the end of the array, as on hardware.
			r[i] = c.mem[int(addr)%len(c.mem)]
			addr++
		}
	}
	return nil
}

func (c *Chip) TxPackets(p []spi.Packet) error {
	for i := range p {
		if err := c.Tx(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	return nil
}
