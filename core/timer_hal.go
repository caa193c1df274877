package core

// Counter geometry of the compare timer
const (
	CounterBits = 16
	CounterSpan = 1 << CounterBits // Counts per wrap

	// MaxSegmentUS is the longest delay programmed into one compare event.
	// Half the span keeps a late match distinguishable from an early one.
	MaxSegmentUS = CounterSpan / 2

	// MinLeadUS is the shortest delay programmed after a tempo change
	MinLeadUS = 20
)

// CompareTimer is a free-running 16-bit counter prescaled to 1 MHz with one
// compare channel raising an interrupt on match.
//
// The counter wraps at 2^16, so one compare can express less than one wrap
// of delay; the step clock chains segments for longer steps.
type CompareTimer interface {
	// Counter returns the current counter value
	Counter() uint16

	// SetCompare programs the absolute counter value of the next match
	SetCompare(at uint16)

	// EnableCompare unmasks the compare-match interrupt
	EnableCompare()

	// DisableCompare masks the compare-match interrupt and clears any pending match
	DisableCompare()
}
