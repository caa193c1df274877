//go:build tinygo && cortexm

package core

import "device/arm"

// WaitForInterrupt sleeps the core until the next interrupt
func WaitForInterrupt() {
	arm.Asm("wfi")
}
