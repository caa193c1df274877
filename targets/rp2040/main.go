//go:build rp2040

package main

import (
	"machine"
	"time"

	"gateseq/config"
	"gateseq/core"
	"gateseq/input"
	"gateseq/protocol"
	"gateseq/render"
	"gateseq/targets/pio"
)

var (
	// Buffers for the edit link
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	link         *protocol.Link

	// Debug counters
	panics       uint32
	renderErrors uint32
	writeErrors  uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART()
	InitUSB()

	cfg := config.DefaultConfig()
	clockCfg, err := cfg.ClockConfig()
	if err != nil {
		halt("config: " + err.Error())
	}
	if pin, err := config.ParsePin(cfg.TriggerPin); err == nil && pin != core.NoPin {
		trig, err := pio.NewTrigger(machine.Pin(pin), pio.DefaultPulseWidth)
		if err != nil {
			core.DebugPrintln("[TRIG] disabled: " + err.Error())
		} else {
			clockCfg.Trigger = trig
		}
	}

	timer := NewAlarmTimer()
	sq, err := core.NewSequencer(clockCfg, timer, NewRPGPIODriver())
	if err != nil {
		halt("sequencer: " + err.Error())
	}
	timer.Attach(sq.Clock())
	sq.SetCycleCounter(Ticks)

	handler := input.NewHandler(sq)
	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()
	link = protocol.NewLink(outputBuffer, func(cmd protocol.Command) {
		if err := handler.Apply(cmd); err != nil {
			core.DebugPrintln("[LINK] " + cmd.ID.String() + ": " + err.Error())
		}
	})

	display, err := InitDisplay()
	if err != nil {
		halt("display: " + err.Error())
	}
	renderer := render.New(display, sq, render.DefaultTheme())

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					inputBuffer.Reset()
					outputBuffer.Reset()
					link.Reset()
					renderer.Invalidate()
				}
			}()

			readUSB()
			if inputBuffer.Available() > 0 {
				link.Receive(inputBuffer)
			}
			writeUSB()

			f := sq.Poll()
			if err := renderer.Render(f); err != nil {
				renderErrors++
				renderer.Invalidate()
			}
			if f.Dirty.Has(core.DirtyRTCache) && core.IsDebugEnabled() {
				core.DebugAsync("[CACHE] rebuild_us=" + itoa(int(sq.LastRebuildCycles())))
			}

			if f.Idle() && USBAvailable() == 0 {
				core.WaitForInterrupt()
			}
		}()
	}
}

// readUSB moves whatever the host sent into the link FIFO
func readUSB() {
	for USBAvailable() > 0 {
		data, err := USBRead()
		if err != nil {
			return
		}
		if inputBuffer.WriteByte(data) != nil {
			// Full: let the link consume before reading more
			return
		}
	}
}

// writeUSB flushes link acknowledgements to the host
func writeUSB() {
	result := outputBuffer.Result()
	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			// Likely disconnected; the host resends on timeout
			writeErrors++
			break
		}
		written += n
	}
	outputBuffer.Reset()
}

// halt reports a fatal startup error and stops with every gate low
func halt(msg string) {
	core.DebugPrintln("[FATAL] " + msg)
	for {
		time.Sleep(time.Second)
	}
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	negative := i < 0
	if negative {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if negative {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
