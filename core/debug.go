package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a timing-critical event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Step      uint8  // Step index at the event
	Clock     uint16 // Timer counter at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtStart   = 1 // Playback armed
	EvtStop    = 2 // Playback disarmed, gates forced low
	EvtStep    = 3 // Step advanced (v1=interval us, v2=gate mask)
	EvtSegment = 4 // Intermediate segment retired (v1=remaining us)
	EvtCatchUp = 5 // Late service (v1=overrun us, v2=segments retired)
	EvtResync  = 6 // Catch-up bound hit, base moved to now
	EvtTempo   = 7 // Tempo changed (v1=bpm, v2=base us)
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Main loop only; blocks for as long as the writer does.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message when the channel is full
func DebugAsync(msg string) {
	if debugEnabled && debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// TimingRing is a fixed ring of recent step clock events.
// Written from interrupt context or with interrupts masked; never allocates.
type TimingRing struct {
	events  [TimingRingSize]TimingEvent
	head    uint8
	enabled bool
}

// Record captures a timing event in the ring buffer
func (r *TimingRing) Record(eventType, step uint8, clock uint16, value1, value2 uint32) {
	if !r.enabled {
		return
	}
	idx := r.head
	r.events[idx] = TimingEvent{
		EventType: eventType,
		Step:      step,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	r.head = (idx + 1) % TimingRingSize
}

// SetEnabled turns event capture on or off
func (r *TimingRing) SetEnabled(enabled bool) {
	r.enabled = enabled
}

// Snapshot copies the ring oldest first into out and returns the count.
// Call with interrupts masked or playback stopped.
func (r *TimingRing) Snapshot(out *[TimingRingSize]TimingEvent) int {
	n := 0
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := r.events[(r.head+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue
		}
		out[n] = evt
		n++
	}
	return n
}

// Clear empties the ring
func (r *TimingRing) Clear() {
	for i := range r.events {
		r.events[i] = TimingEvent{}
	}
	r.head = 0
}

// EventName returns a short label for a timing event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtStart:
		return "START"
	case EvtStop:
		return "STOP"
	case EvtStep:
		return "STEP"
	case EvtSegment:
		return "SEGMENT"
	case EvtCatchUp:
		return "CATCH_UP!"
	case EvtResync:
		return "RESYNC!"
	case EvtTempo:
		return "TEMPO"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing outputs the ring through the debug writer, oldest first.
// Call after stopping playback or with interrupts masked.
func DumpTimingRing(r *TimingRing, stats Stats) {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	debugPrintln("[TIMING] steps=" + utoa(stats.Steps) +
		" segments=" + utoa(stats.Segments) +
		" missed=" + utoa(stats.MissedSegments) +
		" max_overrun_us=" + utoa(stats.MaxOverrunUS) +
		" resyncs=" + utoa(stats.Resyncs))

	var events [TimingRingSize]TimingEvent
	n := r.Snapshot(&events)
	for i := 0; i < n; i++ {
		evt := &events[i]
		debugPrintln("[TIMING] " + EventName(evt.EventType) +
			" step=" + itoa(int(evt.Step)) +
			" clock=" + itoa(int(evt.Clock)) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}
