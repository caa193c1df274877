//go:build rp2040

package main

import (
	"errors"
	"machine"

	"gateseq/core"
)

// RP2040 has GPIO0-GPIO29
const numPins = 30

var (
	errBadPin        = errors.New("gpio: no such pin")
	errNotConfigured = errors.New("gpio: pin not configured")
)

// RPGPIODriver implements core.GPIODriver for RP2040 gate outputs.
// SetPin runs from the alarm interrupt, so it only touches a bitmask.
type RPGPIODriver struct {
	configured uint32 // Bit n set once GPIOn is an output
}

// NewRPGPIODriver creates a GPIO driver with no pins configured
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

// ConfigureOutput configures a pin as a digital output, driven low
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin >= numPins {
		return errBadPin
	}
	if d.configured&(1<<pin) != 0 {
		// Already configured, this is OK
		return nil
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machinePin.Low()

	d.configured |= 1 << pin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	if pin >= numPins || d.configured&(1<<pin) == 0 {
		return errNotConfigured
	}
	machine.Pin(pin).Set(value)
	return nil
}
