package msgring

import "errors"

var (
	// ErrInvalidCapacity is returned by New for non-positive or oversized requests.
	ErrInvalidCapacity = errors.New("msgring: invalid capacity")

	// ErrAllocation is returned by New when the arena cannot be obtained.
	// Fatal; retrying with the same size is pointless.
	ErrAllocation = errors.New("msgring: arena allocation failed")

	// ErrNoSpace is the transient outcome of WriteRequest: try again later.
	ErrNoSpace = errors.New("msgring: no space available")

	// ErrTooLarge means the request can never be satisfied, even on an empty ring.
	ErrTooLarge = errors.New("msgring: element larger than ring can ever hold")

	// ErrInvalidAdvance is the panic value (wrapped) for misuse of the
	// request/advance protocol.
	ErrInvalidAdvance = errors.New("msgring: invalid advance")

	// ErrCorrupt is the panic value (wrapped) when a header does not fit the arena.
	ErrCorrupt = errors.New("msgring: corrupt framing")
)
