package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

const defaultConfig = `[SPI]
ClockMHz = 10

[Chip]
# Range covered by the "full" command, in bytes.
FullDumpSize = 8388608

[Dump]
# Sleep between dump chunks, in milliseconds.
ChunkDelayMS = 1

[Console]
# Serial device carrying the console; empty means stdin/stdout.
Device = ""

[Log]
# DEBUG, INFO or ERROR.
Level = "INFO"
`

type config struct {
	ClockMHz     int64
	FullDumpSize uint32
	ChunkDelay   time.Duration
	Device       string
	LogLevel     string
}

// loadConfig reads the TOML config at path, creating it with defaults
// first if it does not exist. An empty path yields the defaults.
func loadConfig(path string) (*config, error) {
	var (
		tree *toml.Tree
		err  error
	)
	if path == "" {
		tree, err = toml.Load(defaultConfig)
	} else {
		if _, serr := os.Stat(path); os.IsNotExist(serr) {
			if werr := os.WriteFile(path, []byte(defaultConfig), 0644); werr != nil {
				return nil, werr
			}
		}
		tree, err = toml.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}

	cfg := &config{
		ClockMHz:     tree.GetDefault("SPI.ClockMHz", int64(10)).(int64),
		Device:       tree.GetDefault("Console.Device", "").(string),
		LogLevel:     tree.GetDefault("Log.Level", "INFO").(string),
		FullDumpSize: uint32(tree.GetDefault("Chip.FullDumpSize", int64(8<<20)).(int64)),
		ChunkDelay:   time.Duration(tree.GetDefault("Dump.ChunkDelayMS", int64(1)).(int64)) * time.Millisecond,
	}
	if cfg.ClockMHz <= 0 {
		return nil, fmt.Errorf("SPI.ClockMHz must be positive, got %d", cfg.ClockMHz)
	}
	switch cfg.LogLevel {
	case "DEBUG", "INFO", "ERROR":
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return cfg, nil
}
