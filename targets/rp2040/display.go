//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

// ILI9341 on SPI1 (spi1b pins), clear of the gate and trigger outputs
const (
	displaySCK = machine.GPIO14
	displaySDO = machine.GPIO15
	displaySDI = machine.GPIO12
	displayCS  = machine.GPIO13
	displayDC  = machine.GPIO16
	displayRST = machine.GPIO17

	displayFrequency = 40000000
)

// InitDisplay brings up the 320x240 panel in landscape
func InitDisplay() (*ili9341.Device, error) {
	err := machine.SPI1.Configure(machine.SPIConfig{
		Frequency: displayFrequency,
		SCK:       displaySCK,
		SDO:       displaySDO,
		SDI:       displaySDI,
	})
	if err != nil {
		return nil, err
	}

	display := ili9341.NewSPI(machine.SPI1, displayDC, displayCS, displayRST)
	display.Configure(ili9341.Config{})
	if err := display.SetRotation(ili9341.Rotation90); err != nil {
		return nil, err
	}
	return display, nil
}
