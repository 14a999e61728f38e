package spidump

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"time"
)

// maxLine is the longest accepted command line; bytes beyond it are
// dropped (not echoed) until the terminator arrives.
const maxLine = 127

// Console runs the interactive command loop of the dumper: it
// assembles lines from a raw byte stream, echoes input back, and
// dispatches one command per line. Output tokens and error reports all
// go to Out; Log carries diagnostics only and never touches the wire.
type Console struct {
	Flash *Flash
	Out   io.Writer
	Log   *log.Logger

	// FullDumpSize is the range covered by the "full" command.
	FullDumpSize uint32

	// ChunkDelay is slept after each dump chunk so the runtime can
	// service other work during multi-second dumps.
	ChunkDelay time.Duration

	line []byte
}

func NewConsole(f *Flash, out io.Writer) *Console {
	return &Console{
		Flash:        f,
		Out:          out,
		Log:          log.New(io.Discard, "", 0),
		FullDumpSize: 8 << 20,
		ChunkDelay:   time.Millisecond,
	}
}

// Run consumes r byte by byte until EOF or a read error. Printable
// characters are buffered and echoed, backspace/DEL rubs out the last
// buffered character, other control characters are dropped. A newline
// or carriage return terminates the line; non-empty lines are
// dispatched. The prompt is reissued after every completed line.
//
// There is no in-band cancellation: a running dump completes before
// the next byte of input is looked at.
func (c *Console) Run(r io.Reader) error {
	br := bufio.NewReader(r)
	c.prompt()
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch {
		case b == '\n' || b == '\r':
			c.printf("\n")
			if len(c.line) > 0 {
				c.dispatch(string(c.line))
				c.line = c.line[:0]
			}
			c.prompt()
		case b == 0x08 || b == 0x7F: // backspace / DEL
			if len(c.line) > 0 {
				c.line = c.line[:len(c.line)-1]
				c.printf("\b \b")
			}
		case b >= 0x20 && b <= 0x7E:
			if len(c.line) < maxLine {
				c.line = append(c.line, b)
				c.printf("%c", b)
			}
		}
	}
}

func (c *Console) prompt() {
	c.printf("Ready> ")
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.Out, format, a...)
}

func (c *Console) errorf(format string, a ...any) {
	c.printf("ERROR: "+format+"\n", a...)
}
