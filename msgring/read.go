package msgring

import "fmt"

// ============================================================================
// CONSUMER OPERATIONS
// ============================================================================

// ReadView is a consumer-side window onto the oldest unread element.
//
// Payload aliases the arena and is valid until the matching ReadAdvance.
// Copy it if the bytes must outlive the view.
type ReadView struct {
	Payload []byte

	base uint64 // rpos observed at request time
	off  uint64 // Arena offset of the element header
	skip uint64 // Gap bytes consumed in front of the element
	seq  uint64
}

// Len returns the payload length.
func (v ReadView) Len() int {
	return len(v.Payload)
}

// ReadRequest returns the oldest committed element without copying it.
//
// Gap elements are skipped transparently; a gap is always followed by a real
// element published by the same store, so the header at offset 0 exists.
// Returns false when nothing is committed. Calling it again before
// ReadAdvance returns the same element and retires the earlier view.
//
// Panics with ErrCorrupt when a header contradicts the arena bounds.
// Consumer only.
func (r *Ring) ReadRequest() (ReadView, bool) {
	r.rseq++
	r.rpending = false

	rd := r.rpos.Load()
	w := r.wpos.Load()
	if w == rd {
		return ReadView{}, false
	}

	off := rd & r.mask
	h := getHeader(r.buf[off:])

	var skip uint64
	if h.gap {
		skip = r.capacity - off
		if uint64(h.size) != skip-headerSize || w-rd <= skip {
			panic(fmt.Errorf("%w: gap of %d bytes at offset %d (committed %d)", ErrCorrupt, h.size, off, w-rd))
		}
		off = 0
		h = getHeader(r.buf[0:])
		if h.gap {
			panic(fmt.Errorf("%w: consecutive gaps at offset %d", ErrCorrupt, rd&r.mask))
		}
	}

	end := off + framed(uint64(h.size))
	if end > r.capacity || skip+framed(uint64(h.size)) > w-rd {
		panic(fmt.Errorf("%w: element of %d bytes at offset %d", ErrCorrupt, h.size, off))
	}

	r.rpending = true
	return ReadView{
		Payload: r.buf[off+headerSize : off+headerSize+uint64(h.size) : off+headerSize+uint64(h.size)],
		base:    rd,
		off:     off,
		skip:    skip,
		seq:     r.rseq,
	}, true
}

// ReadAdvance releases the element behind v back to the producer.
//
// The framed length is recovered from the header itself; the new rpos is
// published with an atomic store, after which the producer may reuse the
// bytes. Panics with ErrInvalidAdvance when v is not the live view.
// Consumer only.
func (r *Ring) ReadAdvance(v ReadView) {
	if v.seq == 0 || !r.rpending || v.seq != r.rseq {
		panic(fmt.Errorf("%w: read view is not live", ErrInvalidAdvance))
	}
	r.rpending = false

	h := getHeader(r.buf[v.off:])
	r.rpos.Store(v.base + v.skip + framed(uint64(h.size)))
}

// Read copies the oldest element into p and releases it.
//
// Returns the payload length and true, or 0 and false when empty. When p is
// too short the element is left in place and n reports the length required.
func (r *Ring) Read(p []byte) (n int, ok bool) {
	v, ok := r.ReadRequest()
	if !ok {
		return 0, false
	}
	if len(p) < len(v.Payload) {
		return len(v.Payload), false
	}
	n = copy(p, v.Payload)
	r.ReadAdvance(v)
	return n, true
}
