//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"gateseq/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerALARM1   = timerBase + 0x14
	timerARMED    = timerBase + 0x20
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
	timerINTR     = timerBase + 0x34
	timerINTE     = timerBase + 0x38

	// The TinyGo runtime sleeps on alarm 0
	alarmBit = 1 << 1
)

var (
	alarm1   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM1)))
	armed    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	timerRAW = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	intr     = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	inte     = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

// stepClock receives alarm interrupts once attached
var stepClock *core.StepClock

// AlarmTimer presents the 1 MHz system timer and alarm 1 as the 16-bit
// compare timer the step clock expects
type AlarmTimer struct{}

// NewAlarmTimer installs the alarm 1 interrupt, masked until EnableCompare
func NewAlarmTimer() *AlarmTimer {
	inte.ClearBits(alarmBit)
	intr.Set(alarmBit)

	irq := interrupt.New(rp.IRQ_TIMER_IRQ_1, handleAlarm)
	irq.SetPriority(0x00)
	irq.Enable()
	return &AlarmTimer{}
}

// Attach routes alarm interrupts to clock
func (t *AlarmTimer) Attach(clock *core.StepClock) {
	state := core.DisableInterrupts()
	stepClock = clock
	core.RestoreInterrupts(state)
}

// Counter returns the low 16 bits of the microsecond timer
func (t *AlarmTimer) Counter() uint16 {
	return uint16(timerRAW.Get())
}

// SetCompare arms alarm 1 for the next time the low 16 bits equal at.
// The alarm compares 32 bits, so the target is widened forward from now.
func (t *AlarmTimer) SetCompare(at uint16) {
	now := timerRAW.Get()
	delta := at - uint16(now)
	alarm1.Set(now + uint32(delta))
}

func (t *AlarmTimer) EnableCompare() {
	inte.SetBits(alarmBit)
}

func (t *AlarmTimer) DisableCompare() {
	inte.ClearBits(alarmBit)
	armed.Set(alarmBit) // Write 1 to disarm
	intr.Set(alarmBit)
}

// Ticks is the free-running counter used to time cache rebuilds.
// Cortex-M0+ has no cycle counter, so this counts microseconds.
func Ticks() uint32 {
	return timerRAW.Get()
}

func handleAlarm(interrupt.Interrupt) {
	intr.Set(alarmBit)
	if stepClock != nil {
		stepClock.OnCompare()
	}
}
