// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED EVENT CONSUMER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Dedicated Core Event Processing
//
// Description:
//   Core-bound consumer for the message ring. Adaptive polling keeps latency low while the
//   process callback is posting and relaxes the CPU once the graph goes quiet.
//
// Adaptive Behavior:
//   - Hot mode: continuous polling while elements arrive or the producer is active
//   - Cool mode: cpuRelax after spinBudget empty polls
//   - The cooldown variant also ages the global hot flag
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package drain

import (
	"runtime"
	"sync/atomic"
	"time"

	"patchbay/constants"
	"patchbay/control"
	"patchbay/msgring"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION CONSTANTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

const (
	// hotWindow keeps the consumer spinning after the last element.
	hotWindow = constants.HotWindow

	// spinBudget sets the number of empty polls before a relax hint.
	spinBudget = constants.SpinBudget
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STANDARD PINNED CONSUMER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// PinnedConsumer launches a goroutine locked to an OS thread on core and
// consumes r until stop becomes non-zero. A negative core skips pinning.
//
// PARAMETERS:
//   - core: Target CPU core index (0-based), or -1
//   - r: Ring to consume from; this goroutine becomes its only consumer
//   - stop: Shutdown flag (non-zero triggers exit)
//   - hot: Producer activity flag (1 = active producer)
//   - handler: Called for each element; the payload dies when it returns
//   - done: Closed when the consumer exits
//
// Elements still in the ring when stop is observed are drained before exit.
func PinnedConsumer(
	core int,
	r *msgring.Ring,
	stop *atomic.Uint32,
	hot *atomic.Uint32,
	handler Handler,
	done chan<- struct{},
) {
	go consume(core, r, stop, hot, handler, done, false)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COOLDOWN CONSUMER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// PinnedConsumerWithCooldown is PinnedConsumer that also calls
// control.PollCooldown on every empty poll. Run exactly one of these.
func PinnedConsumerWithCooldown(
	core int,
	r *msgring.Ring,
	stop *atomic.Uint32,
	hot *atomic.Uint32,
	handler Handler,
	done chan<- struct{},
) {
	go consume(core, r, stop, hot, handler, done, true)
}

// consume is the shared polling loop.
func consume(
	core int,
	r *msgring.Ring,
	stop *atomic.Uint32,
	hot *atomic.Uint32,
	handler Handler,
	done chan<- struct{},
	cooldown bool,
) {
	runtime.LockOSThread()
	if core >= 0 {
		setAffinity(core)
	}

	defer func() {
		runtime.UnlockOSThread()
		close(done)
	}()

	var miss int
	lastHit := time.Now()

	for {
		// Priority 1: shutdown, after a final drain
		if stop.Load() != 0 {
			DrainOnce(r, handler)
			return
		}

		// Priority 2: consume
		if v, ok := r.ReadRequest(); ok {
			handler(v.Payload)
			r.ReadAdvance(v)
			miss = 0
			lastHit = time.Now()
			continue
		}

		if cooldown {
			control.PollCooldown()
		}

		// Priority 3: stay hot while the producer is live
		if hot.Load() == 1 || time.Since(lastHit) <= hotWindow {
			continue
		}

		// Priority 4: relax
		if miss++; miss >= spinBudget {
			miss = 0
			cpuRelax()
		}
	}
}
