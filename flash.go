package spidump

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Flash commands:
//   - [W25Q128|8.1.2 Instruction Set Table 1]
const (
	flashCmdReadID = 0x9F // Read JEDEC ID
	flashCmdRead   = 0x03
)

const (
	// MaxBlockSize is the largest data payload of a single read
	// transaction. Requests above it are clamped, never rejected.
	MaxBlockSize = 256

	cmdBytes = 4 // opcode + 24-bit address
)

// Flash performs read transactions against a SPI NOR flash chip. It is
// the exclusive owner of the bus connection and chip-select line; all
// calls are synchronous and there is exactly one caller at a time.
type Flash struct {
	conn spi.Conn
	cs   gpio.PinIO
}

func NewFlash(conn spi.Conn, cs gpio.PinIO) *Flash {
	return &Flash{conn: conn, cs: cs}
}

// tx wraps SPI transaction with CS assertion.
func (f *Flash) tx(buf []byte) (err error) {
	if err = f.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := f.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = f.conn.Tx(buf, buf)
	return
}

// ReadID returns the raw JEDEC ID of the flash chip: manufacturer,
// memory type and capacity code. The first received byte is clocked
// out during the command phase and discarded.
func (f *Flash) ReadID() (id [3]byte, err error) {
	buf := make([]byte, 4)
	buf[0] = flashCmdReadID
	// buf[1:] dummy bytes

	if err = f.tx(buf); err != nil {
		return id, err
	}
	return [3]byte(buf[1:]), nil
}

// ReadBlock reads size bytes starting at addr in a single transaction.
// size is clamped to MaxBlockSize; callers wanting more must issue
// multiple blocks. addr must fit in the chip's 24-bit address space.
func (f *Flash) ReadBlock(addr uint32, size int) ([]byte, error) {
	const max24 = 1<<24 - 1 // 0xFFFFFF
	if addr > max24 {
		return nil, fmt.Errorf("address 0x%X out of 24-bit range", addr)
	}
	if size < 0 {
		return nil, fmt.Errorf("negative read size %d", size)
	}
	if size > MaxBlockSize {
		size = MaxBlockSize
	}

	buf := make([]byte, cmdBytes+size)
	buf[0] = flashCmdRead
	buf[1] = byte(addr >> 16)
	buf[2] = byte(addr >> 8)
	buf[3] = byte(addr)
	// buf[4:] dummy bytes clocking out the data phase

	if err := f.tx(buf); err != nil {
		return nil, err
	}

	// The first cmdBytes of the response are garbage echoed during
	// the command/address phase.
	out := make([]byte, size)
	copy(out, buf[cmdBytes:])
	return out, nil
}
