// Command dump2hex converts a captured dumper session into a flat
// binary or an Intel HEX file. The capture may be an unedited terminal
// log; prompts, echoed commands and identification lines are skipped.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gentam/spidump/hostimage"
)

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
	dump2hex [options] CAPTURE OUT.hex|OUT.bin

Reads a dumper session capture (use "-" for stdin) and writes the
recovered image. The output format follows the file extension.

Options:
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	pad := flag.Int("pad", 0xFF, "fill byte for chunks missing from the capture")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
	}
	if *pad < 0 || *pad > 0xFF {
		fatalf("pad byte %#x out of range", *pad)
	}

	var in io.Reader = os.Stdin
	if name := flag.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			fatalf("%v", err)
		}
		defer f.Close()
		in = f
	}

	img, err := hostimage.Parse(in)
	if err != nil {
		fatalf("parse capture: %v", err)
	}

	outName := flag.Arg(1)
	out, err := os.Create(outName)
	if err != nil {
		fatalf("%v", err)
	}
	defer out.Close()

	switch {
	case strings.HasSuffix(outName, ".hex"):
		err = img.WriteIntelHex(out)
	default:
		_, err = out.Write(img.Binary(byte(*pad)))
	}
	if err != nil {
		fatalf("write %s: %v", outName, err)
	}
	fmt.Printf("%s: %d bytes starting at 0x%08X\n", outName, img.Size, img.Start)
}
