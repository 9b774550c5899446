package events

import (
	"sync/atomic"

	"patchbay/control"
	"patchbay/msgring"
)

// Poster is the producer side of the event ring.
//
// Post never blocks and never allocates. When the ring is full the event is
// dropped and counted; the callback must finish its period regardless.
// A Poster is owned by the single producer thread.
type Poster struct {
	ring       *msgring.Ring
	maxPayload int // Encoded size limit per event

	posted  atomic.Uint64
	dropped atomic.Uint64
}

// NewPoster wraps r for the producer. Events whose encoded size exceeds
// maxPayload are refused; pass r.GuaranteedPayload() or less so a drained ring
// always accepts the largest event.
func NewPoster(r *msgring.Ring, maxPayload int) *Poster {
	return &Poster{ring: r, maxPayload: maxPayload}
}

// Post encodes ev straight into the ring.
//
// Returns msgring.ErrNoSpace when the consumer is behind, msgring.ErrTooLarge
// when ev encodes larger than the poster's limit or can never fit, or a
// validation error from Check. Every failure
// increments Dropped.
func (p *Poster) Post(ev Event) error {
	if err := ev.Check(); err != nil {
		p.dropped.Add(1)
		return err
	}

	n := ev.Size()
	if n > p.maxPayload {
		p.dropped.Add(1)
		return msgring.ErrTooLarge
	}
	res, err := p.ring.WriteRequest(n)
	if err != nil {
		p.dropped.Add(1)
		return err
	}
	ev.MarshalTo(res.Buf)
	p.ring.WriteAdvance(res, n)

	p.posted.Add(1)
	control.SignalActivity()
	return nil
}

// Posted returns the number of events committed to the ring.
func (p *Poster) Posted() uint64 {
	return p.posted.Load()
}

// Dropped returns the number of events that could not be posted.
// Safe to read from any goroutine.
func (p *Poster) Dropped() uint64 {
	return p.dropped.Load()
}
