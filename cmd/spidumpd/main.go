// Command spidumpd serves the flash dump console: it brings up the SPI
// bus, then bridges the line protocol between a character stream
// (stdin/stdout or a serial device) and the attached flash chip.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hashicorp/logutils"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/gentam/spidump"
	"github.com/gentam/spidump/simchip"
)

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func main() {
	var (
		cfgPath = flag.String("c", "", "config file (TOML, created with defaults if missing)")
		sim     = flag.Bool("sim", false, "serve a simulated 8MB flash chip instead of hardware")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}

	logger := log.New(&logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "ERROR"},
		MinLevel: logutils.LogLevel(cfg.LogLevel),
		Writer:   os.Stderr,
	}, "spidumpd ", log.LstdFlags)

	in, out, err := openStream(cfg.Device)
	if err != nil {
		fatalf("console stream: %v", err)
	}

	fmt.Fprintf(out, "\n=== SPI Flash Dumper ===\n")
	fmt.Fprintf(out, "Interactive mode - type 'help' for commands\n\n")

	var fl *spidump.Flash
	if *sim {
		chip := simchip.New([3]byte{0xEF, 0x40, 0x17}, 8<<20)
		fl = spidump.NewFlash(chip, &gpiotest.Pin{N: "CS"})
		logger.Printf("[INFO] serving simulated chip")
	} else {
		conn, cs, err := connectSPI(cfg.ClockMHz)
		if err != nil {
			// The one fatal hardware path: without a bus there is
			// nothing to serve.
			fatalf("SPI bring-up failed: %v", err)
		}
		fl = spidump.NewFlash(conn, cs)
	}

	fmt.Fprintf(out, "SPI_READY\n")
	logger.Printf("[INFO] SPI initialized")

	console := spidump.NewConsole(fl, out)
	console.Log = logger
	console.FullDumpSize = cfg.FullDumpSize
	console.ChunkDelay = cfg.ChunkDelay

	if err := console.Run(in); err != nil {
		fatalf("console: %v", err)
	}
	logger.Printf("[INFO] input closed, exiting")
}

// openStream returns the console's input and output. An empty device
// path means stdin/stdout; otherwise the device file (a serial tty,
// assumed already configured) carries both directions.
func openStream(device string) (io.Reader, io.Writer, error) {
	if device == "" {
		return os.Stdin, os.Stdout, nil
	}
	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
