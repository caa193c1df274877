//go:build !tinygo

package core

import (
	"runtime"
	"sync"
)

// IRQState is the saved interrupt mask on regular Go
type IRQState uintptr

// irqMask stands in for the interrupt mask on regular Go.
// The simulated timer holds it while running OnCompare, so code that masks
// interrupts excludes the handler exactly as it would on hardware.
var irqMask sync.Mutex

// DisableInterrupts masks the simulated interrupt and returns the previous state.
// Not reentrant.
func DisableInterrupts() IRQState {
	irqMask.Lock()
	return 0
}

// RestoreInterrupts restores the state returned by DisableInterrupts
func RestoreInterrupts(state IRQState) {
	irqMask.Unlock()
}

// WaitForInterrupt yields the processor until something may have changed
func WaitForInterrupt() {
	runtime.Gosched()
}

func spinWait() {
	runtime.Gosched()
}
