//go:build tinygo && !cortexm

package core

import "runtime"

// WaitForInterrupt yields to the scheduler on targets without wfi
func WaitForInterrupt() {
	runtime.Gosched()
}
