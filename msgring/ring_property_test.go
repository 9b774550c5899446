// ============================================================================
// MESSAGE RING PROPERTY VALIDATION
// ============================================================================
//
// Randomized operation sequences checked against an arena occupancy model.
//
// The model never looks at wpos/rpos arithmetic. It tracks which arena bytes
// hold unreleased elements (gaps included) and derives from that alone:
//   - a reservation never overlaps an unreleased byte
//   - a reservation extends to the first occupied byte or the arena end
//   - a wrapped element never reaches into its own gap
//   - ErrNoSpace is reported only when no placement exists, ErrTooLarge
//     when no placement exists on an empty ring
//   - elements come back in order with their exact bytes

package msgring

import (
	"bytes"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// arenaModel mirrors the ring with plain bookkeeping.
type arenaModel struct {
	capacity int
	used     []bool   // Bytes belonging to unreleased elements
	frontier int      // Arena offset where the next element would start
	spans    [][2]int // Unreleased [start, end) ranges, oldest first, gaps merged in
	queue    [][]byte // Unreleased payloads, oldest first
}

func newArenaModel(capacity int) *arenaModel {
	return &arenaModel{capacity: capacity, used: make([]bool, capacity)}
}

func (m *arenaModel) free(from, to int) bool {
	for i := from; i < to; i++ {
		if m.used[i] {
			return false
		}
	}
	return true
}

func (m *arenaModel) mark(from, to int, v bool) {
	for i := from; i < to; i++ {
		m.used[i] = v
	}
}

// runFrom returns the number of free bytes starting at off, stopping at the
// first occupied byte or the arena end.
func (m *arenaModel) runFrom(off int) int {
	n := 0
	for i := off; i < m.capacity && !m.used[i]; i++ {
		n++
	}
	return n
}

// placement reports where an element of need framed bytes can go, if
// anywhere, and how many framed bytes are contiguous there.
func (m *arenaModel) placement(need int) (off, avail int, wrapped, ok bool) {
	if m.frontier+need <= m.capacity && m.free(m.frontier, m.frontier+need) {
		return m.frontier, m.runFrom(m.frontier), false, true
	}
	// The gap claims [frontier, capacity); the element must end before it.
	if m.frontier+need > m.capacity && need <= m.frontier &&
		m.free(m.frontier, m.capacity) && m.free(0, need) {
		return 0, min(m.runFrom(0), m.frontier), true, true
	}
	return 0, 0, false, false
}

func (m *arenaModel) commit(off int, wrapped bool, payload []byte) {
	start := m.frontier
	end := off + int(framed(uint64(len(payload))))
	if wrapped {
		m.mark(start, m.capacity, true)
	}
	m.mark(off, end, true)

	span := [2]int{start, end}
	if wrapped {
		span[1] = m.capacity + end
	}
	m.spans = append(m.spans, span)
	m.queue = append(m.queue, append([]byte(nil), payload...))
	m.frontier = end & (m.capacity - 1)
}

func (m *arenaModel) release() []byte {
	span := m.spans[0]
	if span[1] > m.capacity {
		m.mark(span[0], m.capacity, false)
		m.mark(0, span[1]-m.capacity, false)
	} else {
		m.mark(span[0], span[1], false)
	}
	p := m.queue[0]
	m.spans = m.spans[1:]
	m.queue = m.queue[1:]
	return p
}

func TestRingMatchesArenaModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.SampledFrom([]int{16, 32, 64, 128, 256}).Draw(t, "capacity")
		r := MustNew(capacity)
		m := newArenaModel(capacity)

		steps := rapid.IntRange(1, 300).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0, 1: // write
				minimum := rapid.IntRange(1, r.MaxPayload()).Draw(t, "minimum")
				res, err := r.WriteRequest(minimum)

				need := int(framed(uint64(minimum)))
				off, avail, wrapped, ok := m.placement(need)
				if !ok {
					want := ErrNoSpace
					if len(m.queue) == 0 {
						want = ErrTooLarge
					}
					if !errors.Is(err, want) {
						t.Fatalf("step %d: WriteRequest(%d) = %v, model has no placement, want %v",
							step, minimum, err, want)
					}
					continue
				}
				if err != nil {
					t.Fatalf("step %d: WriteRequest(%d) = %v, model places at %d", step, minimum, err, off)
				}
				if int(res.off) != off || res.Wrapped() != wrapped {
					t.Fatalf("step %d: reservation at %d wrapped=%v, model %d wrapped=%v",
						step, res.off, res.Wrapped(), off, wrapped)
				}
				if res.Len() < minimum {
					t.Fatalf("step %d: reservation holds %d < %d", step, res.Len(), minimum)
				}
				if want := avail - headerSize; res.Len() != want {
					t.Fatalf("step %d: reservation holds %d, free run allows %d", step, res.Len(), want)
				}

				written := rapid.IntRange(0, res.Len()).Draw(t, "written")
				if rapid.IntRange(0, 9).Draw(t, "abandon") == 0 {
					if _, err := r.WriteRequest(0); !errors.Is(err, ErrNoSpace) {
						t.Fatalf("step %d: abandon returned %v", step, err)
					}
					continue
				}
				payload := rapid.SliceOfN(rapid.Byte(), written, written).Draw(t, "payload")
				copy(res.Buf, payload)
				r.WriteAdvance(res, written)

				m.commit(off, wrapped, payload)

			case 2: // read
				v, ok := r.ReadRequest()
				if ok != (len(m.queue) > 0) {
					t.Fatalf("step %d: ReadRequest ok=%v with %d queued", step, ok, len(m.queue))
				}
				if !ok {
					continue
				}
				want := m.release()
				if !bytes.Equal(v.Payload, want) {
					t.Fatalf("step %d: read %v, want %v", step, v.Payload, want)
				}
				r.ReadAdvance(v)

			case 3: // accounting
				if r.Empty() != (len(m.queue) == 0) {
					t.Fatalf("step %d: Empty()=%v with %d queued", step, r.Empty(), len(m.queue))
				}
				occupied := 0
				for _, u := range m.used {
					if u {
						occupied++
					}
				}
				if r.ReadSpace() != occupied || r.WriteSpace() != capacity-occupied {
					t.Fatalf("step %d: ReadSpace=%d WriteSpace=%d, model occupies %d",
						step, r.ReadSpace(), r.WriteSpace(), occupied)
				}
			}
		}

		// Drain: everything committed must come back.
		for len(m.queue) > 0 {
			v, ok := r.ReadRequest()
			if !ok {
				t.Fatalf("drain: ring empty with %d queued", len(m.queue))
			}
			if want := m.release(); !bytes.Equal(v.Payload, want) {
				t.Fatalf("drain: read %v, want %v", v.Payload, want)
			}
			r.ReadAdvance(v)
		}
		if !r.Empty() {
			t.Fatal("ring not empty after drain")
		}
	})
}
