package main

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

func openFT2232H() (*ftdi.FT232H, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host initialization failed: %w", err)
	}

	const (
		vendorID  = 0x0403 // FTDI
		productID = 0x6010 // FT2232H
	)

	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != vendorID || info.DevID != productID {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			return ft, nil
		}
	}

	return nil, errors.New("not found")
}

func connectSPI(clockMHz int64) (spi.Conn, gpio.PinIO, error) {
	ft, err := openFT2232H()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open FT2232H device: %w", err)
	}

	sp, err := ft.SPI()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get SPI port: %w", err)
	}

	clk := physic.Frequency(clockMHz) * physic.MegaHertz
	mode := spi.Mode0 // the MPSSE engine only supports mode 0 and 2 [FTDI-AN_114|1.2]
	conn, err := sp.Connect(clk, mode, 8)
	if err != nil {
		return nil, nil, err
	}

	cs := ft.D4 // ADBUS4 (GPIOLO → CS)

	return conn, cs, nil
}
