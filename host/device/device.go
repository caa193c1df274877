// Package device is the host side connection to a sequencer's edit link
package device

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gateseq/host/serial"
	"gateseq/protocol"
)

var ErrNotConnected = errors.New("not connected to sequencer")

// Device represents a connection to a sequencer
type Device struct {
	link *protocol.HostLink
	port io.ReadWriteCloser

	// AckTimeout overrides the link's acknowledgement wait when non-zero
	AckTimeout time.Duration

	connected bool
	sent      int // Frames sent
}

// New creates a device that is not yet connected
func New() *Device {
	return &Device{}
}

// Connect opens device at the firmware baud rate
func (d *Device) Connect(device string) error {
	return d.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens the serial port described by cfg
func (d *Device) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	// Drop whatever the device printed before we attached
	if err := port.Flush(); err != nil {
		port.Close()
		return fmt.Errorf("flush %s: %w", cfg.Device, err)
	}
	if err := d.Attach(port); err != nil {
		return fmt.Errorf("start session on %s: %w", cfg.Device, err)
	}
	return nil
}

// Attach runs the edit link over an already open port and starts a new
// link session on the device. The port is closed if that fails.
func (d *Device) Attach(port io.ReadWriteCloser) error {
	link := protocol.NewHostLink(port)
	if d.AckTimeout != 0 {
		link.AckTimeout = d.AckTimeout
	}
	if err := link.Restart(); err != nil {
		link.Close()
		return err
	}
	d.port = port
	d.link = link
	d.connected = true
	return nil
}

// Close closes the connection
func (d *Device) Close() error {
	if !d.connected {
		return nil
	}
	d.connected = false
	return d.link.Close()
}

// IsConnected returns whether the device is connected
func (d *Device) IsConnected() bool {
	return d.connected
}

// FramesSent returns the number of frames acknowledged so far
func (d *Device) FramesSent() int {
	return d.sent
}

// Send transmits cmds in order, packing as many into each frame as fit
func (d *Device) Send(cmds ...protocol.Command) error {
	if !d.connected {
		return ErrNotConnected
	}

	scratch := protocol.NewScratchOutput()
	start, size := 0, 0
	for i, cmd := range cmds {
		scratch.Reset()
		cmd.Encode(scratch)
		n := scratch.CurPosition()
		if size+n > protocol.MessagePayloadMax && i > start {
			if err := d.sendFrame(cmds[start:i]); err != nil {
				return err
			}
			start, size = i, 0
		}
		size += n
	}
	if start < len(cmds) {
		return d.sendFrame(cmds[start:])
	}
	return nil
}

func (d *Device) sendFrame(cmds []protocol.Command) error {
	if err := d.link.Send(cmds...); err != nil {
		return fmt.Errorf("send %s: %w", cmds[0].ID, err)
	}
	d.sent++
	return nil
}

// SendKeys sends each byte of keys as a key press
func (d *Device) SendKeys(keys string) error {
	cmds := make([]protocol.Command, 0, len(keys))
	for i := 0; i < len(keys); i++ {
		cmds = append(cmds, protocol.KeyCommand(keys[i]))
	}
	return d.Send(cmds...)
}

// Exec parses one command line and sends it
func (d *Device) Exec(line string) error {
	cmds, err := ParseLine(line)
	if err != nil {
		return err
	}
	return d.Send(cmds...)
}
