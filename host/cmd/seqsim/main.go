// Command seqsim runs the sequencer on the host: a wall clock timer drives
// the step clock and a terminal grid stands in for the display.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"gateseq/config"
	"gateseq/core"
	"gateseq/input"
	"gateseq/sim"
)

// logger is the package-wide structured logger; defaults to slog.Default()
// until initLogger runs.
var logger = slog.Default()

// initLogger routes slog, and the core debug writer, to path. The terminal
// belongs to the grid, so an empty path discards the log.
func initLogger(level, path string) (io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	var out io.Writer = io.Discard
	var closer io.Closer = io.NopCloser(nil)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, err
		}
		out, closer = f, f
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)

	core.SetDebugWriter(func(s string) {
		logger.Debug(strings.TrimSpace(s))
	})
	core.SetDebugEnabled(lvl <= slog.LevelDebug)
	return closer, nil
}

func main() {
	configPath := flag.String("config", "", "Path to JSON configuration")
	bpm := flag.Int("bpm", 0, "Tempo override")
	logFile := flag.String("log", "seqsim.log", "Log file (empty to discard)")
	debug := flag.Bool("debug", false, "Debug logging and timing dump on exit")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *bpm > 0 {
		cfg.BPM = core.ClampBPM(uint16(*bpm))
	}
	if *debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = *logFile
	}

	closer, err := initLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg); err != nil {
		logger.Error("seqsim failed", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	clockCfg, err := cfg.ClockConfig()
	if err != nil {
		return err
	}
	trigger := &sim.Trigger{}
	if cfg.TriggerPin != "" {
		clockCfg.Trigger = trigger
	}

	timer := sim.NewTimer16()
	pins := sim.NewPins()
	sq, err := core.NewSequencer(clockCfg, timer, pins)
	if err != nil {
		return fmt.Errorf("create sequencer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timer.Run(ctx, sq.Clock().HandleInterrupt)

	logger.Info("sequencer ready",
		"bpm", sq.BPM(),
		"ppqn", sq.Clock().PPQN(),
		"gate_pin", cfg.GatePin,
		"reference_track", cfg.ReferenceTrack)

	m := newModel(sq, input.NewHandler(sq), pins, clockCfg.GatePin, trigger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	sq.Stop()
	st := sq.Clock().Stats()
	logger.Info("timing",
		"steps", st.Steps,
		"segments", st.Segments,
		"missed", st.MissedSegments,
		"max_overrun_us", st.MaxOverrunUS,
		"resyncs", st.Resyncs,
		"gate_errors", st.GateErrors,
		"compare_matches", timer.Matches(),
		"trigger_pulses", trigger.Pulses())
	if cfg.Debug {
		sq.Clock().DumpTiming()
	}
	return nil
}
