//go:build tinygo

package core

import "runtime/interrupt"

// IRQState is the saved interrupt mask
type IRQState = interrupt.State

// DisableInterrupts disables interrupts and returns the previous state
func DisableInterrupts() IRQState {
	return interrupt.Disable()
}

// RestoreInterrupts restores the interrupt state
func RestoreInterrupts(state IRQState) {
	interrupt.Restore(state)
}

func spinWait() {}
