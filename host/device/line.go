package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"gateseq/core"
	"gateseq/protocol"
)

var (
	ErrEmptyLine   = errors.New("empty command line")
	ErrUnknownVerb = errors.New("unknown command")
	ErrBadArgs     = errors.New("bad arguments")
)

// Usage describes the line syntax ParseLine accepts. Patterns are numbered
// from 1 as on the display.
const Usage = `  bpm N               set tempo
  length P N          set every track of pattern P to N steps
  pattern P           edit and play pattern P
  mode pattern|song   choose what plays
  song P [P...]       append patterns to the song
  song clear          empty the song
  keys TEXT           press each key in TEXT ("keys ' '" toggles play)
  <wire name> ARGS    any edit link command by name, e.g. set_bpm 90`

// ParseLine turns one shell-quoted command line into edit link commands
func ParseLine(line string) ([]protocol.Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyLine
	}
	verb, args := strings.ToLower(words[0]), words[1:]

	switch verb {
	case "bpm":
		n, err := parseArgs(args, 1, core.MaxBPM)
		if err != nil {
			return nil, err
		}
		return []protocol.Command{{ID: protocol.CmdSetBPM, Args: [protocol.MaxArgs]uint32{n[0]}}}, nil

	case "length":
		n, err := parseArgs(args, 2, core.NumSteps)
		if err != nil {
			return nil, err
		}
		p, err := patternIndex(n[0])
		if err != nil {
			return nil, err
		}
		return []protocol.Command{{ID: protocol.CmdSetLength, Args: [protocol.MaxArgs]uint32{p, n[1]}}}, nil

	case "pattern":
		n, err := parseArgs(args, 1, core.NumPatterns)
		if err != nil {
			return nil, err
		}
		p, err := patternIndex(n[0])
		if err != nil {
			return nil, err
		}
		return []protocol.Command{{ID: protocol.CmdSelectPattern, Args: [protocol.MaxArgs]uint32{p}}}, nil

	case "mode":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: mode pattern|song", ErrBadArgs)
		}
		var mode core.PlayMode
		switch strings.ToLower(args[0]) {
		case "pattern":
			mode = core.PlayPattern
		case "song":
			mode = core.PlaySong
		default:
			return nil, fmt.Errorf("%w: mode %q", ErrBadArgs, args[0])
		}
		return []protocol.Command{{ID: protocol.CmdSetPlayMode, Args: [protocol.MaxArgs]uint32{uint32(mode)}}}, nil

	case "song":
		if len(args) == 1 && strings.ToLower(args[0]) == "clear" {
			return []protocol.Command{{ID: protocol.CmdSongClear}}, nil
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: song P [P...] or song clear", ErrBadArgs)
		}
		n, err := parseArgs(args, len(args), core.NumPatterns)
		if err != nil {
			return nil, err
		}
		cmds := make([]protocol.Command, 0, len(n))
		for _, v := range n {
			p, err := patternIndex(v)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, protocol.Command{ID: protocol.CmdSongAppend, Args: [protocol.MaxArgs]uint32{p}})
		}
		return cmds, nil

	case "keys":
		keys := strings.Join(args, " ")
		if keys == "" {
			return nil, fmt.Errorf("%w: keys TEXT", ErrBadArgs)
		}
		cmds := make([]protocol.Command, 0, len(keys))
		for i := 0; i < len(keys); i++ {
			cmds = append(cmds, protocol.KeyCommand(keys[i]))
		}
		return cmds, nil
	}

	id, ok := protocol.LookupCommand(verb)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVerb, verb)
	}
	n, err := parseArgs(args, id.ArgCount(), 0xFFFF)
	if err != nil {
		return nil, err
	}
	cmd, err := protocol.NewCommand(id, n...)
	if err != nil {
		return nil, err
	}
	return []protocol.Command{cmd}, nil
}

// parseArgs parses exactly want unsigned arguments no larger than max
func parseArgs(args []string, want int, max uint32) ([]uint32, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrBadArgs, want, len(args))
	}
	out := make([]uint32, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil || uint32(v) > max {
			return nil, fmt.Errorf("%w: %q", ErrBadArgs, a)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

func patternIndex(n uint32) (uint32, error) {
	if n < 1 || n > core.NumPatterns {
		return 0, fmt.Errorf("%w: pattern %d not in 1..%d", ErrBadArgs, n, core.NumPatterns)
	}
	return n - 1, nil
}
