// ============================================================================
// EVENT RING CONSUMERS
// ============================================================================
//
// Consumer loops for the message ring. Three shapes, one per deployment:
//
//   - DrainOnce: empty the ring from an existing loop (tests, shutdown)
//   - PollEvery: UI refresh tick, drains once per interval
//   - PinnedConsumer: dedicated OS thread spinning on the ring
//
// Every handler receives a payload that aliases the ring arena and is valid
// only for the duration of the call. Copy it to keep it.

package drain

import (
	"context"
	"time"

	"patchbay/msgring"
)

// Handler processes one element.
type Handler func(payload []byte)

// DrainOnce hands every committed element to h and returns how many it saw.
// Elements committed while draining are included.
func DrainOnce(r *msgring.Ring, h Handler) int {
	n := 0
	for {
		v, ok := r.ReadRequest()
		if !ok {
			return n
		}
		h(v.Payload)
		r.ReadAdvance(v)
		n++
	}
}

// PollEvery drains r once per interval until ctx ends.
//
// On cancellation it drains one last time so nothing committed before the
// cancel is lost, then returns ctx.Err().
func PollEvery(ctx context.Context, r *msgring.Ring, interval time.Duration, h Handler) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			DrainOnce(r, h)
			return ctx.Err()
		case <-ticker.C:
			DrainOnce(r, h)
		}
	}
}
