package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// NoPin marks an unconfigured output
const NoPin GPIOPin = 0xFFFFFFFF

// GPIODriver is the abstract GPIO interface the step clock drives gates through.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	// Called from interrupt context; must not block or allocate
	SetPin(pin GPIOPin, value bool) error
}

// Trigger emits a short fixed-width pulse on gate-on.
// Implementations queue the pulse and return immediately (interrupt context).
type Trigger interface {
	Fire()
}
