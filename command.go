package spidump

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const helpText = `Commands:
  help           - Show this help
  id             - Read chip JEDEC ID
  read ADDR SIZE - Read block (hex, max 256 bytes)
  dump ADDR SIZE - Dump large region
  full           - Dump entire chip (default capacity)
Examples:
  read 0 16      - Read first 16 bytes
  dump 0 100000  - Dump first 1MB
`

// dispatch routes one complete, non-empty command line. Malformed or
// unknown commands produce a single ERROR line and no bus transaction;
// the loop itself never fails on bad input.
func (c *Console) dispatch(line string) {
	switch {
	case line == "help":
		c.printf("%s", helpText)
	case line == "id":
		c.cmdID()
	case strings.HasPrefix(line, "read "):
		addr, size, err := parseHexArgs(line[len("read "):])
		if err != nil {
			c.errorf("Usage: read ADDR SIZE (hex)")
			return
		}
		c.readBlock(addr, size)
	case strings.HasPrefix(line, "dump "):
		addr, size, err := parseHexArgs(line[len("dump "):])
		if err != nil {
			c.errorf("Usage: dump ADDR SIZE (hex)")
			return
		}
		c.dumpRange(addr, size)
	case line == "full":
		c.dumpRange(0, c.FullDumpSize)
	default:
		c.errorf("Unknown command '%s'. Type 'help' for commands.", line)
	}
}

// parseHexArgs parses exactly two bare hex tokens (no 0x prefix).
func parseHexArgs(args string) (addr, size uint32, err error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, errors.New("expected ADDR and SIZE")
	}
	a, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	s, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(a), uint32(s), nil
}

func (c *Console) cmdID() {
	id, err := c.Flash.Identify()
	if err != nil {
		c.errorf("Failed to read JEDEC ID")
		c.Log.Printf("[ERROR] JEDEC ID read: %v", err)
		return
	}

	c.printf("CHIP_ID: %02X %02X %02X\n", id.Manufacturer, id.MemoryType, id.CapacityCode)
	c.printf("CHIP_TYPE: %s\n", id.Vendor())
	if size, ok := id.Capacity(); ok {
		c.printf("CHIP_SIZE: %d bytes (%dMB)\n", size, size/(1<<20))
	} else {
		c.printf("CHIP_SIZE: Unknown\n")
	}
}

// readBlock performs one bounded block read and emits its DATA line.
// Sizes above MaxBlockSize are clamped by Flash.ReadBlock, so the line
// carries at most 256 bytes. Reports false if the transaction failed.
func (c *Console) readBlock(addr, size uint32) bool {
	data, err := c.Flash.ReadBlock(addr, int(size))
	if err != nil {
		c.errorf("Failed to read data from 0x%08X", addr)
		c.Log.Printf("[ERROR] block read at 0x%08X: %v", addr, err)
		return false
	}

	var sb strings.Builder
	sb.Grow(len("DATA: AAAAAAAA ") + 3*len(data))
	fmt.Fprintf(&sb, "DATA: %08X ", addr)
	for _, b := range data {
		fmt.Fprintf(&sb, "%02X ", b)
	}
	c.printf("%s\n", sb.String())
	return true
}
