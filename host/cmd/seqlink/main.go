// Command seqlink drives a sequencer over its serial edit link, either
// forwarding raw key presses or sending command lines.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"

	"gateseq/config"
	"gateseq/host/device"
	"gateseq/host/serial"
)

var (
	configPath = flag.String("config", "", "Path to JSON configuration")
	devicePath = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate, ignored for USB CDC (overrides config)")
	lines      = flag.Bool("lines", false, "Read command lines instead of raw keys")
	ackTimeout = flag.Duration("ack-timeout", 0, "Acknowledgement wait (0 = link default)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

// logger is the package-wide structured logger
var logger = slog.Default()

func initLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
	return nil
}

func main() {
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := initLogger(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	serialCfg := serial.DefaultConfig(cfg.Serial.Device)
	serialCfg.Baud = cfg.Serial.Baud
	serialCfg.ReadTimeout = cfg.Serial.ReadTimeoutMS
	if *devicePath != "" {
		serialCfg.Device = *devicePath
	}
	if *baud > 0 {
		serialCfg.Baud = *baud
	}

	dev := device.New()
	dev.AckTimeout = *ackTimeout
	logger.Info("connecting", "device", serialCfg.Device, "baud", serialCfg.Baud)
	if err := dev.ConnectWithConfig(serialCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	var err error
	if *lines {
		err = runLines(dev, os.Stdin)
	} else {
		err = runRaw(dev)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("disconnected", "frames", dev.FramesSent())
}

// runRaw forwards every key byte typed on stdin until ctrl-c or ctrl-d
func runRaw(dev *device.Device) error {
	fd := os.Stdin.Fd()
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}
	fmt.Print("Forwarding keys, ctrl-c to quit\r\n")

	buf := make([]byte, 16)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			keys := buf[:n]
			if i := indexQuit(keys); i >= 0 {
				keys = keys[:i]
				if len(keys) > 0 {
					sendLogged(dev, keys)
				}
				return nil
			}
			sendLogged(dev, keys)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func indexQuit(keys []byte) int {
	for i, b := range keys {
		if b == 0x03 || b == 0x04 {
			return i
		}
	}
	return -1
}

func sendLogged(dev *device.Device, keys []byte) {
	start := time.Now()
	if err := dev.SendKeys(string(keys)); err != nil {
		logger.Warn("send failed", "keys", fmt.Sprintf("%q", keys), "err", err)
		return
	}
	logger.Debug("sent", "keys", fmt.Sprintf("%q", keys), "rtt", time.Since(start))
}

// runLines executes one command line per input line
func runLines(dev *device.Device, in io.Reader) error {
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch line {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			printHelp()
			continue
		}

		if err := dev.Exec(line); err != nil {
			if errors.Is(err, device.ErrUnknownVerb) {
				fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", line)
				continue
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println(device.Usage)
	fmt.Println("  help                show this help message")
	fmt.Println("  quit/exit/q         exit the program")
	fmt.Println()
}
