// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — patch-bay event pipeline tunables
//
// Purpose:
//   - Defaults for the event ring, the consumer loops and the journal.
//   - config.Default() starts from these; a JSON file may override them.
//
// Notes:
//   - Ring sizes are powers of two; msgring rounds anything else up.
//   - Timings assume a 48 kHz graph with 256-frame periods (~5.3 ms).
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ───────────────────────────── Event Ring ──────────────────────────────────

const (
	// RingCapacity is the default arena size for the callback → UI ring.
	// 64 KiB holds several thousand graph events, far more than a burst of
	// port registrations during session load produces in one UI tick.
	RingCapacity = 64 << 10

	// MaxEventPayload caps a single encoded event. Port names are limited to
	// 256 bytes by the audio server, and an event carries at most two names.
	MaxEventPayload = 1024
)

// ─────────────────────────── Consumer Polling ──────────────────────────────

const (
	// PollInterval is the UI refresh tick used by the polled consumer.
	PollInterval = 40 * time.Millisecond

	// HotWindow keeps a pinned consumer spinning after the last event.
	HotWindow = 5 * time.Second

	// SpinBudget is the number of empty polls before a cpuRelax hint.
	SpinBudget = 224

	// Cooldown clears the global hot flag after this much producer silence.
	Cooldown = 1 * time.Second

	// ConsumerCore is the default core for the pinned consumer; -1 disables pinning.
	ConsumerCore = -1
)

// ─────────────────────────── Simulated Graph ───────────────────────────────

const (
	// SampleRate and PeriodFrames drive the simulated process callback.
	SampleRate   = 48000
	PeriodFrames = 256

	// Period is the wall-clock length of one process cycle.
	Period = time.Duration(PeriodFrames) * time.Second / SampleRate
)

// ───────────────────────────── Journal ─────────────────────────────────────

const (
	// JournalPath is the sqlite file recording drained graph events.
	JournalPath = "patchbay_events.db"

	// JournalBatch is the number of events committed per transaction.
	JournalBatch = 64
)
