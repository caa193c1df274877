package protocol

// InputBuffer is a byte source the link parses frames from
type InputBuffer interface {
	// Data returns the unread bytes
	Data() []byte

	// Available returns the number of unread bytes
	Available() int

	// Pop discards n bytes from the front
	Pop(n int)
}

// OutputBuffer is a byte sink frames are encoded into
type OutputBuffer interface {
	Output(data []byte)

	// CurPosition returns the current write position
	CurPosition() int

	// DataSince returns what was written from pos to now
	DataSince(pos int) []byte
}

// SliceInputBuffer implements InputBuffer over a byte slice
type SliceInputBuffer struct {
	data []byte
}

func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte {
	return s.data
}

func (s *SliceInputBuffer) Available() int {
	return len(s.data)
}

func (s *SliceInputBuffer) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// ScratchOutput implements OutputBuffer on a fixed array, silently
// truncating past MessageMax
type ScratchOutput struct {
	buf [MessageMax]byte
	pos int
}

func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns everything written since the last Reset
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer is a ring buffer between a byte producer (UART, serial port)
// and the frame parser. One slot stays free to tell full from empty.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends as much of data as fits and returns the count
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// WriteByte appends one byte; it reports ErrBufferTooSmall when full
func (f *FifoBuffer) WriteByte(b byte) error {
	nextWrite := (f.write + 1) % f.size
	if nextWrite == f.read {
		return ErrBufferTooSmall
	}
	f.buf[f.write] = b
	f.write = nextWrite
	return nil
}

// Read moves up to len(data) bytes out of the buffer
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		if f.read == f.write {
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	return read
}

func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes that can still be written
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// Data returns the unread bytes as one contiguous slice. A wrapped buffer
// is first rotated in place so the parser never sees a split frame.
func (f *FifoBuffer) Data() []byte {
	if f.read > f.write {
		f.linearize()
	}
	return f.buf[f.read:f.write]
}

func (f *FifoBuffer) linearize() {
	n := f.Available()
	// Rotate left by read
	reverse(f.buf[:f.read])
	reverse(f.buf[f.read:])
	reverse(f.buf)
	f.read = 0
	f.write = n
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func (f *FifoBuffer) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = (f.read + 1) % f.size
	}
}

func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
