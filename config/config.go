// Package config loads the sequencer's JSON configuration
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gateseq/core"
)

var (
	ErrBadPin       = errors.New("invalid pin name")
	ErrBadReference = errors.New("reference_track out of range")
	ErrTooManyGates = errors.New("more track_gate_pins than tracks")
)

// SerialConfig selects the host end of the edit link
type SerialConfig struct {
	Device        string `json:"device"`
	Baud          int    `json:"baud"`
	ReadTimeoutMS int    `json:"read_timeout_ms"`
}

// Config is the on-disk sequencer configuration.
// Pins are named "gpioN"; an empty name leaves the output unassigned.
type Config struct {
	BPM            uint16   `json:"bpm"`
	PPQN           uint16   `json:"ppqn"`
	ReferenceTrack uint8    `json:"reference_track"`
	GatePin        string   `json:"gate_pin"`
	TrackGatePins  []string `json:"track_gate_pins"`
	TriggerPin     string   `json:"trigger_pin"`

	Debug    bool   `json:"debug"`
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`

	Serial SerialConfig `json:"serial"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.BPM == 0 {
		cfg.BPM = core.DefaultBPM
	}
	cfg.BPM = core.ClampBPM(cfg.BPM)
	if cfg.PPQN == 0 {
		cfg.PPQN = core.DefaultPPQN
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Serial.ReadTimeoutMS == 0 {
		cfg.Serial.ReadTimeoutMS = 100
	}
}

// DefaultConfig returns the configuration of the reference hardware:
// gate on gpio10, trigger on gpio11, no per-track gates
func DefaultConfig() *Config {
	cfg := &Config{
		GatePin:    "gpio10",
		TriggerPin: "gpio11",
		Serial: SerialConfig{
			Device: "/dev/ttyACM0",
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Validate checks pin names and ranges
func (c *Config) Validate() error {
	if c.ReferenceTrack >= core.NumTracks {
		return fmt.Errorf("%w: %d", ErrBadReference, c.ReferenceTrack)
	}
	if len(c.TrackGatePins) > core.NumTracks {
		return ErrTooManyGates
	}
	names := append([]string{c.GatePin, c.TriggerPin}, c.TrackGatePins...)
	for _, name := range names {
		if _, err := ParsePin(name); err != nil {
			return err
		}
	}
	return nil
}

// ClockConfig converts to the step clock's construction settings.
// The trigger is hardware specific and left for the caller to attach.
func (c *Config) ClockConfig() (core.Config, error) {
	out := core.DefaultConfig()
	out.BPM = c.BPM
	out.PPQN = c.PPQN
	out.ReferenceTrack = c.ReferenceTrack

	pin, err := ParsePin(c.GatePin)
	if err != nil {
		return out, err
	}
	out.GatePin = pin

	for i, name := range c.TrackGatePins {
		if i >= core.NumTracks {
			return out, ErrTooManyGates
		}
		if out.TrackGatePins[i], err = ParsePin(name); err != nil {
			return out, err
		}
	}
	return out, nil
}

// ParsePin converts "gpioN" (or a bare number) to a pin; "" gives NoPin
func ParsePin(name string) (core.GPIOPin, error) {
	if name == "" {
		return core.NoPin, nil
	}
	num := strings.TrimPrefix(strings.ToLower(name), "gpio")
	n, err := strconv.ParseUint(num, 10, 8)
	if err != nil {
		return core.NoPin, fmt.Errorf("%w: %q", ErrBadPin, name)
	}
	return core.GPIOPin(n), nil
}
