// ============================================================================
// LOCK-FREE SPSC MESSAGE RING
// ============================================================================
//
// Single-producer/single-consumer ring carrying variable-length elements from
// a real-time audio callback to a non-real-time event thread.
//
// Core capabilities:
//   - Two-phase reserve/commit on both sides, zero copy in place
//   - Arbitrary payload sizes inside a fixed power-of-2 byte arena
//   - Gap elements keep every payload contiguous across wraparound
//   - No locks, no blocking, no allocation on the producer path
//
// Architecture overview:
//   - wpos is stored only by the producer, rpos only by the consumer
//   - Positions are monotonic byte counters, masked into the arena on use,
//     so wpos == rpos is always empty and wpos - rpos == capacity is full;
//     no arena byte is held back and the ring may be filled completely
//   - Positions live on isolated cache lines
//   - Each element is an 8-byte header followed by its padded payload
//
// Memory ordering:
//   - Producer: arena writes, then atomic store of wpos
//   - Consumer: atomic load of wpos, then arena reads
//   - Symmetric for rpos in the other direction
//   - sync/atomic is sequentially consistent, which covers acquire/release
//
// Safety model:
//   - SPSC discipline is a caller contract; the ring cannot verify it
//   - Misuse of the request/advance protocol panics in every build
//   - Views and reservations alias the arena and die at the matching advance

package msgring

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// Ring is a variable-length SPSC message ring.
//
// Memory layout:
//   - Cache line 0: padding + wpos (producer)
//   - Cache line 1: producer-local reservation state
//   - Cache line 2: rpos (consumer) + consumer-local view state
//   - Cache line 3: immutable configuration (mask, capacity, arena)
type Ring struct {
	_    cpu.CacheLinePad
	wpos atomic.Uint64 // Bytes ever framed by the producer

	// Producer-local; never touched by the consumer.
	wseq     uint64 // Reservation generation
	wpending bool   // A reservation is outstanding

	_    cpu.CacheLinePad
	rpos atomic.Uint64 // Bytes ever released by the consumer

	// Consumer-local; never touched by the producer.
	rseq     uint64
	rpending bool

	_ cpu.CacheLinePad

	mask     uint64 // capacity - 1
	capacity uint64 // Power of two, fixed
	buf      []byte // Arena
}

// State is a point-in-time view of the ring for diagnostics.
// Fields are loaded independently and may be mutually stale under load.
type State struct {
	Capacity uint64 // Arena size in bytes
	WriteIdx uint64 // Producer counter (monotonic)
	ReadIdx  uint64 // Consumer counter (monotonic)
	WriteOff uint64 // Producer frontier inside the arena
	ReadOff  uint64 // Consumer frontier inside the arena
	Used     uint64 // Bytes framed but not yet released, gaps included
}

// ============================================================================
// CONSTRUCTOR
// ============================================================================

// roundUpPowerOfTwo returns the next power of two >= n, with floor minCapacity.
func roundUpPowerOfTwo(n int) uint64 {
	if n < minCapacity {
		return minCapacity
	}

	x := uint64(n)
	if x&(x-1) == 0 {
		return x
	}

	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++

	return x
}

// New creates a ring with at least minimumCapacity bytes of arena.
//
// The capacity is rounded up to a power of two (floor 16). Allocation failure
// is reported as ErrAllocation and is not retryable.
func New(minimumCapacity int) (r *Ring, err error) {
	if minimumCapacity <= 0 || uint64(minimumCapacity) > maxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, minimumCapacity)
	}

	capacity := roundUpPowerOfTwo(minimumCapacity)

	// makeslice panics rather than returning nil when the runtime refuses the size.
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrAllocation, capacity, p)
		}
	}()

	return &Ring{
		mask:     capacity - 1,
		capacity: capacity,
		buf:      make([]byte, capacity),
	}, nil
}

// MustNew is New for static configuration; it panics on error.
func MustNew(minimumCapacity int) *Ring {
	r, err := New(minimumCapacity)
	if err != nil {
		panic(err)
	}
	return r
}

// ============================================================================
// ACCOUNTING
// ============================================================================

// Capacity returns the arena size in bytes.
func (r *Ring) Capacity() int {
	return int(r.capacity)
}

// MaxPayload returns the largest payload a single element can carry.
// It fits only when the ring is empty with both counters at an arena boundary.
func (r *Ring) MaxPayload() int {
	return int(r.capacity - headerSize)
}

// GuaranteedPayload returns the largest payload that always fits once the
// consumer has drained the ring, wherever the counters happen to rest.
// An empty ring at offset x offers max(capacity-x, x) contiguous bytes.
func (r *Ring) GuaranteedPayload() int {
	return int(r.capacity/2 - headerSize)
}

// Fits reports ErrTooLarge unless n is at most GuaranteedPayload, the size a
// drained ring accepts at every rest offset. Producers use it at setup time to
// separate misconfiguration from backpressure. Larger payloads up to MaxPayload
// may still be written, but only while the counters happen to allow it.
func (r *Ring) Fits(n int) error {
	if n < 0 || n > r.GuaranteedPayload() {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, n, r.GuaranteedPayload())
	}
	return nil
}

// ReadSpace returns framed bytes awaiting the consumer, gaps included.
func (r *Ring) ReadSpace() int {
	rd := r.rpos.Load() // rpos first: rpos <= wpos holds at every instant
	return int(r.wpos.Load() - rd)
}

// WriteSpace returns free bytes. This is total space; contiguity is not implied.
func (r *Ring) WriteSpace() int {
	return int(r.capacity) - r.ReadSpace()
}

// Empty reports whether every committed element has been released.
func (r *Ring) Empty() bool {
	return r.wpos.Load() == r.rpos.Load()
}

// DebugState returns a snapshot of the ring positions.
func (r *Ring) DebugState() State {
	rd := r.rpos.Load()
	w := r.wpos.Load()
	return State{
		Capacity: r.capacity,
		WriteIdx: w,
		ReadIdx:  rd,
		WriteOff: w & r.mask,
		ReadOff:  rd & r.mask,
		Used:     w - rd,
	}
}
