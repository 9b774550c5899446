package events

import (
	"encoding/binary"
	"errors"
	"strings"

	"patchbay/utils"
)

// ============================================================================
// WIRE FORMAT
// ============================================================================
//
// Little-endian, fixed 24-byte prefix followed by the two names:
//
//	[0]      kind
//	[1]      reserved (0)
//	[2:4]    len(Name)
//	[4:6]    len(Peer)
//	[6:8]    reserved (0)
//	[8:16]   Frame
//	[16:24]  Value
//	[24:]    Name, then Peer

const (
	// FixedSize is the encoded size of an event with empty names.
	FixedSize = 24

	// MaxNameLen bounds each name so its length fits the 16-bit field.
	MaxNameLen = 1<<16 - 1
)

var (
	// ErrShortEvent reports a buffer too small for the fixed prefix or the names it declares.
	ErrShortEvent = errors.New("events: short event")

	// ErrNameTooLong reports a name that cannot be length-prefixed.
	ErrNameTooLong = errors.New("events: name too long")
)

// Size returns the encoded length of e.
//
//go:inline
func (e *Event) Size() int {
	return FixedSize + len(e.Name) + len(e.Peer)
}

// MarshalTo encodes e into dst and returns the bytes written.
// dst must hold Size() bytes; names must not exceed MaxNameLen.
// No allocation: safe on the real-time thread.
func (e *Event) MarshalTo(dst []byte) int {
	_ = dst[FixedSize-1]

	dst[0] = byte(e.Kind)
	dst[1] = 0
	binary.LittleEndian.PutUint16(dst[2:4], uint16(len(e.Name)))
	binary.LittleEndian.PutUint16(dst[4:6], uint16(len(e.Peer)))
	binary.LittleEndian.PutUint16(dst[6:8], 0)
	binary.LittleEndian.PutUint64(dst[8:16], e.Frame)
	binary.LittleEndian.PutUint64(dst[16:24], e.Value)

	n := FixedSize
	n += copy(dst[n:], e.Name)
	n += copy(dst[n:], e.Peer)
	return n
}

// Check validates e for encoding.
func (e *Event) Check() error {
	if !e.Kind.Valid() {
		return ErrUnknownKind
	}
	if len(e.Name) > MaxNameLen || len(e.Peer) > MaxNameLen {
		return ErrNameTooLong
	}
	return nil
}

// PeekKind returns the kind of an encoded event without decoding it.
func PeekKind(b []byte) (Kind, error) {
	if len(b) < FixedSize {
		return KindInvalid, ErrShortEvent
	}
	k := Kind(b[0])
	if !k.Valid() {
		return KindInvalid, ErrUnknownKind
	}
	return k, nil
}

// DecodeView parses one encoded event without copying. Name and Peer alias b
// and die with it: on a ring view, at ReadAdvance. Trailing bytes are ignored.
func DecodeView(b []byte) (Event, error) {
	k, err := PeekKind(b)
	if err != nil {
		return Event{}, err
	}

	nameLen := int(binary.LittleEndian.Uint16(b[2:4]))
	peerLen := int(binary.LittleEndian.Uint16(b[4:6]))
	if len(b) < FixedSize+nameLen+peerLen {
		return Event{}, ErrShortEvent
	}

	return Event{
		Kind:  k,
		Frame: binary.LittleEndian.Uint64(b[8:16]),
		Value: binary.LittleEndian.Uint64(b[16:24]),
		Name:  utils.B2s(b[FixedSize : FixedSize+nameLen]),
		Peer:  utils.B2s(b[FixedSize+nameLen : FixedSize+nameLen+peerLen]),
	}, nil
}

// Decode is DecodeView with owned copies of the names.
func Decode(b []byte) (Event, error) {
	ev, err := DecodeView(b)
	if err != nil {
		return Event{}, err
	}
	ev.Name = strings.Clone(ev.Name)
	ev.Peer = strings.Clone(ev.Peer)
	return ev, nil
}
