// Package serial opens the host end of the sequencer's edit link
package serial

import (
	"errors"
	"io"
)

var (
	ErrNilConfig = errors.New("serial: config cannot be nil")
	ErrNoDevice  = errors.New("serial: no device given")
	ErrBadBaud   = errors.New("serial: baud rate must be positive")
)

// Port is a serial connection to the sequencer
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate; USB CDC ignores it
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultBaud matches the firmware UART
const DefaultBaud = 115200

// DefaultConfig returns a configuration for device at the firmware baud rate
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}

// Validate checks that cfg can be opened
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Device == "" {
		return ErrNoDevice
	}
	if c.Baud <= 0 {
		return ErrBadBaud
	}
	return nil
}
