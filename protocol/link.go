package protocol

import "sync/atomic"

// CommandHandler receives each decoded command in arrival order
type CommandHandler func(cmd Command)

// LinkStats counts frame level outcomes on the receiving side
type LinkStats struct {
	Frames   uint32 // Frames accepted and dispatched
	Dropped  uint32 // Valid frames ignored for an unexpected sequence
	Resyncs  uint32 // Times the parser lost and regained framing
	BadCmds  uint32 // Payloads with an undecodable command
	Restarts uint32 // link_reset frames accepted
}

// Link is the device side of the edit link. It parses frames out of an
// InputBuffer, dispatches commands in order and answers every frame with an
// acknowledgement carrying the next expected sequence.
type Link struct {
	synchronized uint32
	nextSequence uint32
	output       OutputBuffer // nil for a receive-only link
	handler      CommandHandler

	frames   uint32
	dropped  uint32
	resyncs  uint32
	badCmds  uint32
	restarts uint32
}

// NewLink creates a synchronized link expecting sequence MessageDest
func NewLink(output OutputBuffer, handler CommandHandler) *Link {
	return &Link{
		synchronized: 1,
		nextSequence: MessageDest,
		output:       output,
		handler:      handler,
	}
}

// Receive consumes every complete frame in input. A trailing partial frame
// stays in input for the next call.
func (l *Link) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !l.getSynchronized() {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			l.setSynchronized(true)
			atomic.AddUint32(&l.resyncs, 1)
			l.sendAck()
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			l.setSynchronized(false)
			continue
		}
		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			l.setSynchronized(false)
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			l.setSynchronized(false)
			continue
		}
		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			l.setSynchronized(false)
			continue
		}

		payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
		data = data[msgLen:]

		expected := uint8(atomic.LoadUint32(&l.nextSequence))
		if seq == MessageDest && isLinkReset(payload) {
			// New host session; a retransmit of it resets again
			expected = MessageDest
			atomic.AddUint32(&l.restarts, 1)
		}
		if seq == expected {
			atomic.StoreUint32(&l.nextSequence, uint32(NextSequence(seq)))
			l.dispatch(payload)
		} else {
			atomic.AddUint32(&l.dropped, 1)
		}
		// A mismatched sequence turns this into a NAK naming the expected one
		l.sendAck()
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

// dispatch decodes the commands of one payload. Decoding stops at the
// first bad command; commands before it still apply.
func (l *Link) dispatch(payload []byte) {
	atomic.AddUint32(&l.frames, 1)
	for len(payload) > 0 {
		cmd, err := DecodeCommand(&payload)
		if err != nil {
			atomic.AddUint32(&l.badCmds, 1)
			return
		}
		if cmd.ID == CmdLinkReset {
			continue
		}
		if l.handler != nil {
			l.handler(cmd)
		}
	}
}

// isLinkReset reports whether payload opens with a link_reset command
func isLinkReset(payload []byte) bool {
	cmd, err := DecodeCommand(&payload)
	return err == nil && cmd.ID == CmdLinkReset
}

func (l *Link) sendAck() {
	if l.output == nil {
		return
	}
	EncodeAck(l.output, uint8(atomic.LoadUint32(&l.nextSequence)))
}

// Reset returns the link to its initial state
func (l *Link) Reset() {
	atomic.StoreUint32(&l.synchronized, 1)
	atomic.StoreUint32(&l.nextSequence, MessageDest)
}

// Stats returns a snapshot of the link counters
func (l *Link) Stats() LinkStats {
	return LinkStats{
		Frames:   atomic.LoadUint32(&l.frames),
		Dropped:  atomic.LoadUint32(&l.dropped),
		Resyncs:  atomic.LoadUint32(&l.resyncs),
		BadCmds:  atomic.LoadUint32(&l.badCmds),
		Restarts: atomic.LoadUint32(&l.restarts),
	}
}

func (l *Link) getSynchronized() bool {
	return atomic.LoadUint32(&l.synchronized) != 0
}

func (l *Link) setSynchronized(val bool) {
	if val {
		atomic.StoreUint32(&l.synchronized, 1)
	} else {
		atomic.StoreUint32(&l.synchronized, 0)
	}
}
