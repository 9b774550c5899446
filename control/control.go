// control.go — Global control flags and activity management for consumers
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling shared by the
// process-callback producer, the event-ring consumers and main.
//
// Architecture overview:
//   • Global hot/stop flags for lock-free inter-thread communication
//   • Nanosecond activity tracking with automatic cooldown
//   • Zero-allocation flag access for consumer hot loops
//   • ShutdownWG lets main wait for consumers to drain and exit
//
// Threading model:
//   • The producer signals activity via SignalActivity() after posting events
//   • Consumer threads poll flags via Flags() for coordination
//   • A single pinned consumer calls PollCooldown() to age the hot flag
//   • main calls Shutdown() on SIGINT/SIGTERM and waits on ShutdownWG

package control

import (
	"sync"
	"sync/atomic"
	"time"

	"patchbay/constants"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	hot  atomic.Uint32 // 1 = producer posted recently, 0 = idle
	stop atomic.Uint32 // 1 = shutdown requested

	lastHot    atomic.Int64 // UnixNano of last producer activity
	cooldownNs atomic.Int64 // Idle period before hot clears

	// ShutdownWG tracks consumers that must finish before the process exits.
	ShutdownWG sync.WaitGroup
)

func init() {
	cooldownNs.Store(int64(constants.Cooldown))
}

// ============================================================================
// ACTIVITY SIGNALING (PRODUCER INTEGRATION)
// ============================================================================

// SignalActivity marks the system as active and records the time.
// Called by the producer after a successful post; two atomic stores, no allocation.
func SignalActivity() {
	hot.Store(1)
	lastHot.Store(time.Now().UnixNano())
}

// ForceHot puts consumers into low-latency mode at startup, before the
// first event arrives. The cooldown ages it out like any other activity.
func ForceHot() {
	SignalActivity()
}

// ============================================================================
// COOLDOWN MANAGEMENT
// ============================================================================

// PollCooldown clears the hot flag once the producer has been silent for the
// cooldown period. Call from exactly one consumer loop.
func PollCooldown() {
	if hot.Load() == 1 && time.Now().UnixNano()-lastHot.Load() > cooldownNs.Load() {
		hot.Store(0)
	}
}

// SetCooldown overrides the idle period before the hot flag clears.
func SetCooldown(d time.Duration) {
	cooldownNs.Store(int64(d))
}

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown sets the global stop flag. Consumers observe it on their next poll.
func Shutdown() {
	stop.Store(1)
}

// ============================================================================
// FLAG ACCESS
// ============================================================================

// Flags returns the global (stop, hot) flags for consumer loops.
// The pointers remain valid for the lifetime of the process.
func Flags() (*atomic.Uint32, *atomic.Uint32) {
	return &stop, &hot
}

// IsActive reports whether the producer has been active within the cooldown.
func IsActive() bool {
	return hot.Load() == 1
}

// IsShuttingDown reports whether Shutdown has been called.
func IsShuttingDown() bool {
	return stop.Load() == 1
}

// ActivityAge returns the time since the last SignalActivity, or 0 if none.
func ActivityAge() time.Duration {
	last := lastHot.Load()
	if last == 0 {
		return 0
	}
	return time.Duration(time.Now().UnixNano() - last)
}
