package core

// MeasureCycles runs f and returns the elapsed count of a free-running
// counter. Wrapping subtraction keeps one counter overflow harmless.
func MeasureCycles(counter func() uint32, f func()) uint32 {
	start := counter()
	f()
	return counter() - start
}
