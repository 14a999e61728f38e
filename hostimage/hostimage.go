// Package hostimage reassembles the dumper's textual output stream
// into a contiguous binary image. It understands the DATA, DUMP_START
// and DUMP_END tokens and ignores everything else (prompts, echoed
// commands, chip identification lines), so a raw terminal capture can
// be fed in unedited.
package hostimage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/marcinbor85/gohex"
)

const prompt = "Ready> "

// Image is flash content recovered from a capture.
type Image struct {
	mem *gohex.Memory

	// Start and Size describe the dumped range: from DUMP_START when
	// present, otherwise the extent of the DATA lines seen.
	Start uint32
	Size  uint32
}

// Parse reads a capture from r. ERROR lines inside a dump mark chunks
// the device failed to read; the resulting holes are filled with the
// padding byte when the image is flattened.
func Parse(r io.Reader) (*Image, error) {
	img := &Image{mem: gohex.NewMemory()}

	var (
		started  bool
		ended    bool
		sawData  bool
		lowAddr  uint32
		highAddr uint32 // exclusive
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 64<<10)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimPrefix(sc.Text(), prompt)

		switch {
		case strings.HasPrefix(line, "DATA: "):
			addr, data, err := parseDataLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
			if len(data) == 0 {
				continue
			}
			if err := img.mem.AddBinary(addr, data); err != nil {
				return nil, fmt.Errorf("line %d: overlapping data at 0x%08X", lineno, addr)
			}
			if !sawData || addr < lowAddr {
				lowAddr = addr
			}
			if end := addr + uint32(len(data)); !sawData || end > highAddr {
				highAddr = end
			}
			sawData = true

		case strings.HasPrefix(line, "DUMP_START: "):
			if started {
				return nil, fmt.Errorf("line %d: second DUMP_START in capture", lineno)
			}
			started = true
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: malformed DUMP_START", lineno)
			}
			start, err := strconv.ParseUint(fields[1], 16, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed DUMP_START address", lineno)
			}
			size, err := strconv.ParseUint(fields[2], 16, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed DUMP_START size", lineno)
			}
			img.Start = uint32(start)
			img.Size = uint32(size)

		case line == "DUMP_END":
			ended = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if started && !ended {
		return nil, fmt.Errorf("capture truncated: DUMP_START without DUMP_END")
	}
	if !started {
		// Loose DATA lines from read commands; derive the extent.
		if !sawData {
			return nil, fmt.Errorf("no dump data in capture")
		}
		img.Start = lowAddr
		img.Size = highAddr - lowAddr
	}
	return img, nil
}

func parseDataLine(line string) (uint32, []byte, error) {
	fields := strings.Fields(line)
	// fields[0] is the DATA: token, fields[1] the address.
	if len(fields) < 2 {
		return 0, nil, fmt.Errorf("malformed DATA line")
	}
	addr, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed DATA address %q", fields[1])
	}
	data := make([]byte, 0, len(fields)-2)
	for _, tok := range fields[2:] {
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return 0, nil, fmt.Errorf("malformed DATA byte %q", tok)
		}
		data = append(data, byte(b))
	}
	return uint32(addr), data, nil
}

// Binary flattens the image into Size bytes starting at Start. Holes
// left by failed chunks are filled with padding.
func (im *Image) Binary(padding byte) []byte {
	return im.mem.ToBinary(im.Start, im.Size, padding)
}

// WriteIntelHex writes the image in Intel HEX format, 16 data bytes
// per record.
func (im *Image) WriteIntelHex(w io.Writer) error {
	return im.mem.DumpIntelHex(w, 16)
}
