package msgring

import "fmt"

// ============================================================================
// PRODUCER OPERATIONS
// ============================================================================

// WriteReservation is a producer-side claim on arena space.
//
// Buf aliases the arena; its length is the true number of payload bytes
// available, which may exceed the requested minimum. The reservation is
// consumed by WriteAdvance. Dropping it without advancing is a legal abandon.
type WriteReservation struct {
	Buf []byte

	base uint64 // wpos observed at request time
	off  uint64 // Arena offset of the element header
	gap  uint64 // Bytes skipped to the arena end before off (0 = none)
	seq  uint64 // Generation; 0 marks the zero value
}

// Len returns the usable payload length of the reservation.
func (res WriteReservation) Len() int {
	return len(res.Buf)
}

// Wrapped reports whether the reservation required a gap element.
func (res WriteReservation) Wrapped() bool {
	return res.gap != 0
}

// WriteRequest reserves room for at least minimum payload bytes.
//
// Algorithm:
//  1. Load rpos to learn how much the consumer has released
//  2. Use [wpos, arena end) when the element fits there
//  3. Otherwise plan a gap to the arena end and use [0, ...) when the
//     remaining free space after the gap holds the element
//  4. Otherwise report ErrNoSpace, or ErrTooLarge when the ring is already
//     empty: no amount of consumer progress can make room then
//
// A minimum <= 0 abandons any pending reservation and reports ErrNoSpace.
// ErrTooLarge is structural: the element exceeds MaxPayload, or exceeds what a
// drained ring offers at its current rest offset. Retrying cannot help.
// ErrNoSpace is transient: retry on a later callback, never spin in place.
//
// Nothing shared is touched until WriteAdvance. Producer only.
func (r *Ring) WriteRequest(minimum int) (WriteReservation, error) {
	r.wseq++
	r.wpending = false

	if minimum <= 0 {
		return WriteReservation{}, ErrNoSpace
	}
	if uint64(minimum) > r.capacity-headerSize {
		return WriteReservation{}, ErrTooLarge
	}
	return r.reserve(framed(uint64(minimum)))
}

// reserve claims need framed bytes. The caller has already retired any
// previous reservation.
func (r *Ring) reserve(need uint64) (WriteReservation, error) {
	w := r.wpos.Load()
	rd := r.rpos.Load()

	free := r.capacity - (w - rd)
	off := w & r.mask
	tail := r.capacity - off

	var res WriteReservation
	switch {
	case need <= tail && need <= free:
		// Contiguous run up to whichever ends first: arena or free space.
		span := min(tail, free)
		res = WriteReservation{
			Buf:  r.buf[off+headerSize : off+span],
			base: w,
			off:  off,
		}

	case need > tail && tail+need <= free:
		// Wrapped: the tail becomes a gap and the element starts at offset 0.
		span := free - tail
		res = WriteReservation{
			Buf:  r.buf[headerSize:span],
			base: w,
			off:  0,
			gap:  tail,
		}

	case w == rd:
		// Drained and still no placement: only payloads above
		// GuaranteedPayload end up here.
		return WriteReservation{}, ErrTooLarge

	default:
		return WriteReservation{}, ErrNoSpace
	}

	res.seq = r.wseq
	r.wpending = true
	return res, nil
}

// WriteAdvance publishes written payload bytes of res.
//
// Writes the gap header if one was planned, then the element header, then
// stores the new wpos. The store is the only publication point: the consumer
// sees header and payload once it observes the new wpos.
//
// Panics with ErrInvalidAdvance when res is not the live reservation or
// written exceeds it. Producer only.
func (r *Ring) WriteAdvance(res WriteReservation, written int) {
	if res.seq == 0 || !r.wpending || res.seq != r.wseq {
		panic(fmt.Errorf("%w: write reservation is not live", ErrInvalidAdvance))
	}
	if written < 0 || written > len(res.Buf) {
		panic(fmt.Errorf("%w: wrote %d of %d reserved bytes", ErrInvalidAdvance, written, len(res.Buf)))
	}
	r.wpending = false

	if res.gap != 0 {
		at := res.base & r.mask
		putHeader(r.buf[at:], uint32(res.gap-headerSize), gapFlag)
	}
	putHeader(r.buf[res.off:], uint32(written), realFlag)

	r.wpos.Store(res.base + res.gap + framed(uint64(written)))
}

// Write copies p into the ring as one element.
// Convenience for producers that already hold the payload.
// An empty p commits a header-only element.
func (r *Ring) Write(p []byte) error {
	r.wseq++
	r.wpending = false

	if uint64(len(p)) > r.capacity-headerSize {
		return ErrTooLarge
	}
	res, err := r.reserve(framed(uint64(len(p))))
	if err != nil {
		return err
	}
	copy(res.Buf, p)
	r.WriteAdvance(res, len(p))
	return nil
}
