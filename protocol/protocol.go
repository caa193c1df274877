// Package protocol implements the framed edit link between a host tool and
// the sequencer: VLQ encoded commands inside CRC16 checked frames.
package protocol

// Version is the edit link protocol version
const Version = "0.1.0"

// Frame layout: len, seq, payload..., crc_hi, crc_lo, sync
const (
	MessageMax         = 64 // Largest frame, header and trailer included
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = MessageMax
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Sequence byte: high nibble is always MessageDest, low nibble counts
	MessageDest       = 0x10
	MessageSeqMask    = 0x0F
	MessagePayloadMax = MessageMax - MessageLengthMin
)

// NextSequence returns the sequence byte that follows seq
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}

// EncodeFrame writes one complete frame carrying payload to output
func EncodeFrame(output OutputBuffer, seq uint8, payload []byte) error {
	if len(payload) > MessagePayloadMax {
		return ErrFrameTooLong
	}
	cursor := output.CurPosition()
	output.Output([]byte{uint8(len(payload) + MessageLengthMin), seq})
	output.Output(payload)

	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// EncodeAck builds the acknowledgement frame naming the next expected sequence
func EncodeAck(output OutputBuffer, next uint8) {
	_ = EncodeFrame(output, next, nil)
}
