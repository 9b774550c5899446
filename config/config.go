// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — runtime configuration for the patch-bay pipeline
//
// Purpose:
//   - Starts from the compile-time defaults in constants.
//   - Overlays an optional JSON file; absent keys keep their defaults.
//   - Validates the result before anything is allocated.
//
// Notes:
//   - Durations are written as Go duration strings ("40ms", "1s").
//   - Loaded once at startup; never touched by the process callback.
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"patchbay/constants"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Consumer modes.
const (
	ConsumerPinned = "pinned"
	ConsumerPolled = "polled"
)

// Duration is a time.Duration that reads and writes Go duration strings.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config holds every runtime tunable.
type Config struct {
	// Event ring
	RingCapacity    int `json:"ring_capacity"`
	MaxEventPayload int `json:"max_event_payload"`

	// Consumer
	Consumer     string   `json:"consumer"`
	ConsumerCore int      `json:"consumer_core"`
	PollInterval Duration `json:"poll_interval"`
	Cooldown     Duration `json:"cooldown"`

	// Simulated graph
	SampleRate   int `json:"sample_rate"`
	PeriodFrames int `json:"period_frames"`

	// Journal; an empty path disables it
	JournalPath  string `json:"journal_path"`
	JournalBatch int    `json:"journal_batch"`

	// RunFor stops the process after this long; 0 runs until a signal.
	RunFor Duration `json:"run_for"`
}

// Default returns the compile-time defaults.
func Default() Config {
	return Config{
		RingCapacity:    constants.RingCapacity,
		MaxEventPayload: constants.MaxEventPayload,
		Consumer:        ConsumerPinned,
		ConsumerCore:    constants.ConsumerCore,
		PollInterval:    Duration(constants.PollInterval),
		Cooldown:        Duration(constants.Cooldown),
		SampleRate:      constants.SampleRate,
		PeriodFrames:    constants.PeriodFrames,
		JournalPath:     constants.JournalPath,
		JournalBatch:    constants.JournalBatch,
	}
}

// Load overlays the JSON file at path on Default and validates the result.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	switch {
	case c.RingCapacity <= 0 || c.RingCapacity > 1<<31:
		return fmt.Errorf("%w: ring_capacity %d outside (0, 2^31]", ErrInvalid, c.RingCapacity)

	// Rounding up only grows the ring, so half the configured size minus a
	// header is a safe floor for what always fits once drained.
	case c.MaxEventPayload <= 0 || c.MaxEventPayload > c.RingCapacity/2-8:
		return fmt.Errorf("%w: max_event_payload %d does not fit a %d-byte ring",
			ErrInvalid, c.MaxEventPayload, c.RingCapacity)

	case c.Consumer != ConsumerPinned && c.Consumer != ConsumerPolled:
		return fmt.Errorf("%w: consumer %q (want %q or %q)", ErrInvalid, c.Consumer, ConsumerPinned, ConsumerPolled)

	case c.Consumer == ConsumerPolled && c.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)

	case c.Cooldown <= 0:
		return fmt.Errorf("%w: cooldown must be positive", ErrInvalid)

	case c.SampleRate <= 0 || c.PeriodFrames <= 0:
		return fmt.Errorf("%w: sample_rate %d, period_frames %d", ErrInvalid, c.SampleRate, c.PeriodFrames)

	case c.JournalBatch < 0:
		return fmt.Errorf("%w: journal_batch %d", ErrInvalid, c.JournalBatch)

	case c.RunFor < 0:
		return fmt.Errorf("%w: run_for must not be negative", ErrInvalid)
	}
	return nil
}

// Period returns the wall-clock length of one process cycle.
func (c *Config) Period() time.Duration {
	return time.Duration(c.PeriodFrames) * time.Second / time.Duration(c.SampleRate)
}
