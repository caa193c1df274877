package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateseq/core"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, uint16(core.DefaultBPM), cfg.BPM)
	assert.Equal(t, uint16(core.DefaultPPQN), cfg.PPQN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, 100, cfg.Serial.ReadTimeoutMS)
}

func TestLoadConfigFields(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{
		"bpm": 500,
		"ppqn": 4,
		"reference_track": 2,
		"gate_pin": "GPIO15",
		"track_gate_pins": ["gpio2", "", "3"],
		"serial": {"device": "/dev/ttyUSB1", "baud": 57600}
	}`))
	require.NoError(t, err)

	assert.Equal(t, uint16(core.MaxBPM), cfg.BPM, "bpm is clamped")
	assert.Equal(t, uint16(4), cfg.PPQN)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Device)

	clock, err := cfg.ClockConfig()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), clock.ReferenceTrack)
	assert.Equal(t, core.GPIOPin(15), clock.GatePin)
	assert.Equal(t, core.GPIOPin(2), clock.TrackGatePins[0])
	assert.Equal(t, core.NoPin, clock.TrackGatePins[1])
	assert.Equal(t, core.GPIOPin(3), clock.TrackGatePins[2])
	assert.Equal(t, core.NoPin, clock.TrackGatePins[7])
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig([]byte(`{"bpm": "fast"}`))
	assert.Error(t, err)

	_, err = LoadConfig([]byte(`{"reference_track": 8}`))
	assert.ErrorIs(t, err, ErrBadReference)

	_, err = LoadConfig([]byte(`{"gate_pin": "pa10"}`))
	assert.ErrorIs(t, err, ErrBadPin)

	_, err = LoadConfig([]byte(`{"track_gate_pins": ["1","2","3","4","5","6","7","8","9"]}`))
	assert.ErrorIs(t, err, ErrTooManyGates)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateseq.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bpm": 98, "debug": true}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(98), cfg.BPM)
	assert.True(t, cfg.Debug)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	clock, err := cfg.ClockConfig()
	require.NoError(t, err)
	assert.Equal(t, core.GPIOPin(10), clock.GatePin)

	trig, err := ParsePin(cfg.TriggerPin)
	require.NoError(t, err)
	assert.Equal(t, core.GPIOPin(11), trig)
}
