package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateseq/core"
	"gateseq/protocol"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want []protocol.Command
	}{
		{"bpm 97", []protocol.Command{{ID: protocol.CmdSetBPM, Args: [2]uint32{97}}}},
		{"length 2 12", []protocol.Command{{ID: protocol.CmdSetLength, Args: [2]uint32{1, 12}}}},
		{"pattern 16", []protocol.Command{{ID: protocol.CmdSelectPattern, Args: [2]uint32{15}}}},
		{"mode song", []protocol.Command{{ID: protocol.CmdSetPlayMode, Args: [2]uint32{uint32(core.PlaySong)}}}},
		{"MODE Pattern", []protocol.Command{{ID: protocol.CmdSetPlayMode, Args: [2]uint32{uint32(core.PlayPattern)}}}},
		{"song clear", []protocol.Command{{ID: protocol.CmdSongClear}}},
		{"song 1 2", []protocol.Command{
			{ID: protocol.CmdSongAppend, Args: [2]uint32{0}},
			{ID: protocol.CmdSongAppend, Args: [2]uint32{1}},
		}},
		{"keys 'q w'", []protocol.Command{
			protocol.KeyCommand('q'), protocol.KeyCommand(' '), protocol.KeyCommand('w'),
		}},
		{"set_length 0 4", []protocol.Command{{ID: protocol.CmdSetLength, Args: [2]uint32{0, 4}}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"", ErrEmptyLine},
		{"   ", ErrEmptyLine},
		{"tempo 90", ErrUnknownVerb},
		{"bpm", ErrBadArgs},
		{"bpm fast", ErrBadArgs},
		{"bpm 900", ErrBadArgs},
		{"pattern 0", ErrBadArgs},
		{"pattern 17", ErrBadArgs},
		{"length 1", ErrBadArgs},
		{"mode loop", ErrBadArgs},
		{"song", ErrBadArgs},
		{"keys", ErrBadArgs},
		{"keys 'unterminated", ErrBadArgs},
		{"song_clear 1", ErrBadArgs},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
