package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrAckTimeout = errors.New("timed out waiting for ack")
	ErrLinkClosed = errors.New("link closed")
	ErrNak        = errors.New("frame rejected")
)

// DefaultAckTimeout is how long Send waits for the device to acknowledge
const DefaultAckTimeout = 500 * time.Millisecond

// HostLink is the host side of the edit link. It frames commands onto a
// serial port and, unless AckTimeout is zero, waits for each frame to be
// acknowledged, retransmitting on a NAK or timeout.
type HostLink struct {
	port io.ReadWriteCloser

	AckTimeout time.Duration
	Retries    int

	seq uint8

	writeMutex sync.Mutex
	acks       chan uint8
	stopChan   chan struct{}
	doneChan   chan struct{}
	closeOnce  sync.Once
}

// NewHostLink starts a reader on port that collects acknowledgements
func NewHostLink(port io.ReadWriteCloser) *HostLink {
	l := &HostLink{
		port:       port,
		AckTimeout: DefaultAckTimeout,
		Retries:    3,
		seq:        MessageDest,
		acks:       make(chan uint8, 8),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
	go l.readLoop()
	return l
}

// Send transmits one frame carrying cmds, in order
func (l *HostLink) Send(cmds ...Command) error {
	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()
	return l.send(cmds, false)
}

// Restart opens a new session: the device drops its sequence state and the
// next frame is numbered from MessageDest again. A frame with sequence
// MessageDest that is not a restart is treated as a duplicate.
func (l *HostLink) Restart() error {
	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()
	l.seq = MessageDest
	return l.send([]Command{{ID: CmdLinkReset}}, true)
}

func (l *HostLink) send(cmds []Command, restart bool) error {
	payload := NewScratchOutput()
	for _, cmd := range cmds {
		cmd.Encode(payload)
	}
	if payload.CurPosition() > MessagePayloadMax {
		return ErrFrameTooLong
	}
	frame := NewScratchOutput()
	for attempt := 0; ; attempt++ {
		l.drainAcks()
		frame.Reset()
		if err := EncodeFrame(frame, l.seq, payload.Result()); err != nil {
			return err
		}
		if _, err := l.port.Write(frame.Result()); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if l.AckTimeout == 0 {
			l.seq = NextSequence(l.seq)
			return nil
		}

		next, err := l.waitAck(NextSequence(l.seq))
		if err == nil {
			l.seq = next
			return nil
		}
		if errors.Is(err, ErrNak) && !restart {
			// Resend with the sequence the device expects
			l.seq = next
		}
		if attempt >= l.Retries || errors.Is(err, ErrLinkClosed) {
			return fmt.Errorf("frame seq %#x: %w", l.seq, err)
		}
	}
}

// waitAck waits for the acknowledgement of the frame just sent and returns
// the sequence the device expects next. Any other sequence is a NAK.
func (l *HostLink) waitAck(want uint8) (uint8, error) {
	timer := time.NewTimer(l.AckTimeout)
	defer timer.Stop()

	select {
	case next, ok := <-l.acks:
		if !ok {
			return 0, ErrLinkClosed
		}
		if next != want {
			return next, ErrNak
		}
		return next, nil
	case <-timer.C:
		return 0, ErrAckTimeout
	case <-l.stopChan:
		return 0, ErrLinkClosed
	}
}

func (l *HostLink) drainAcks() {
	for {
		select {
		case <-l.acks:
		default:
			return
		}
	}
}

// Sequence returns the sequence byte of the next frame
func (l *HostLink) Sequence() uint8 {
	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()
	return l.seq
}

func (l *HostLink) readLoop() {
	defer close(l.doneChan)
	defer close(l.acks)

	fifo := NewFifoBuffer(4 * MessageMax)
	buf := make([]byte, MessageMax)
	for {
		n, err := l.port.Read(buf)
		if n > 0 {
			fifo.Write(buf[:n])
			l.parseAcks(fifo)
		}
		if err != nil {
			if err == io.EOF {
				// Serial reads time out with io.EOF when idle
				select {
				case <-l.stopChan:
					return
				default:
					continue
				}
			}
			return
		}
		select {
		case <-l.stopChan:
			return
		default:
		}
	}
}

// parseAcks extracts acknowledgement frames, discarding anything else
func (l *HostLink) parseAcks(fifo *FifoBuffer) {
	data := fifo.Data()
	for len(data) >= MessageLengthMin {
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax ||
			data[MessagePositionSeq]&^MessageSeqMask != MessageDest {
			data = data[1:]
			continue
		}
		if len(data) < msgLen {
			break
		}
		crc := uint16(data[msgLen-MessageTrailerCRC])<<8 | uint16(data[msgLen-MessageTrailerCRC+1])
		if data[msgLen-MessageTrailerSync] != MessageValueSync ||
			crc != CRC16(data[:msgLen-MessageTrailerSize]) {
			data = data[1:]
			continue
		}
		if msgLen == MessageLengthMin {
			select {
			case l.acks <- data[MessagePositionSeq]:
			default:
			}
		}
		data = data[msgLen:]
	}
	fifo.Pop(fifo.Available() - len(data))
}

// Close stops the reader and closes the port
func (l *HostLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.stopChan)
		err = l.port.Close()
		<-l.doneChan
	})
	return err
}
