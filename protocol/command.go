package protocol

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("wrong number of command arguments")
)

// CommandID identifies an edit link command on the wire
type CommandID uint8

const (
	CmdKey CommandID = iota + 1
	CmdSetBPM
	CmdSetLength
	CmdSetPlayMode
	CmdSongAppend
	CmdSongClear
	CmdSelectPattern
	CmdLinkReset
)

// MaxArgs is the largest argument count of any command
const MaxArgs = 2

var commandInfo = [...]struct {
	name string
	args uint8
}{
	CmdKey:           {"key", 1},
	CmdSetBPM:        {"set_bpm", 1},
	CmdSetLength:     {"set_length", 2},
	CmdSetPlayMode:   {"set_play_mode", 1},
	CmdSongAppend:    {"song_append", 1},
	CmdSongClear:     {"song_clear", 0},
	CmdSelectPattern: {"select_pattern", 1},
	CmdLinkReset:     {"link_reset", 0},
}

func (id CommandID) valid() bool {
	return id != 0 && int(id) < len(commandInfo)
}

func (id CommandID) String() string {
	if !id.valid() {
		return "unknown"
	}
	return commandInfo[id].name
}

// ArgCount returns how many arguments id carries, 0 for unknown ids
func (id CommandID) ArgCount() int {
	if !id.valid() {
		return 0
	}
	return int(commandInfo[id].args)
}

// LookupCommand resolves a command name
func LookupCommand(name string) (CommandID, bool) {
	for id := CmdKey; id.valid(); id++ {
		if commandInfo[id].name == name {
			return id, true
		}
	}
	return 0, false
}

// Command is one decoded edit link command
type Command struct {
	ID   CommandID
	Args [MaxArgs]uint32
}

// NewCommand builds a command, checking the argument count
func NewCommand(id CommandID, args ...uint32) (Command, error) {
	if !id.valid() {
		return Command{}, ErrUnknownCommand
	}
	if len(args) != id.ArgCount() {
		return Command{}, ErrArgCount
	}
	cmd := Command{ID: id}
	copy(cmd.Args[:], args)
	return cmd, nil
}

// KeyCommand forwards one raw key byte
func KeyCommand(key byte) Command {
	return Command{ID: CmdKey, Args: [MaxArgs]uint32{uint32(key)}}
}

// Encode writes the command id and its arguments as VLQs
func (c Command) Encode(output OutputBuffer) {
	EncodeVLQUint(output, uint32(c.ID))
	for i := 0; i < c.ID.ArgCount(); i++ {
		EncodeVLQUint(output, c.Args[i])
	}
}

// DecodeCommand reads one command from data and advances past it
func DecodeCommand(data *[]byte) (Command, error) {
	raw, err := DecodeVLQUint(data)
	if err != nil {
		return Command{}, err
	}
	id := CommandID(raw)
	if raw > 0xFF || !id.valid() {
		return Command{}, ErrUnknownCommand
	}

	cmd := Command{ID: id}
	for i := 0; i < id.ArgCount(); i++ {
		if cmd.Args[i], err = DecodeVLQUint(data); err != nil {
			return Command{}, err
		}
	}
	return cmd, nil
}
