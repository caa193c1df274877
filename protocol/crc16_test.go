package protocol

import "testing"

func TestCRC16(t *testing.T) {
	testCases := []struct {
		data     []byte
		expected uint16
	}{
		{data: []byte{}, expected: 0xFFFF},
		{data: []byte("123456789"), expected: 0x6F91},
		{data: []byte{5, MessageDest}, expected: 0x9E81},
	}

	for i, tc := range testCases {
		if got := CRC16(tc.data); got != tc.expected {
			t.Errorf("Test case %d: CRC16(%v) = 0x%04X, want 0x%04X", i, tc.data, got, tc.expected)
		}
	}
}

func TestCRC16Different(t *testing.T) {
	crc1 := CRC16([]byte{0x01, 0x02, 0x03})
	crc2 := CRC16([]byte{0x01, 0x02, 0x04})
	if crc1 == crc2 {
		t.Errorf("CRC16 collision: both inputs produced %04X", crc1)
	}
}
