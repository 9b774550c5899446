// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: event.go — patch-bay graph notifications
//
// Purpose:
//   - Defines the events the audio-graph process callback hands to the UI.
//   - Each event travels as one msgring element (see codec.go).
//
// Notes:
//   - Names are Go strings so the producer can post pre-built port names
//     without allocating; Decode allocates, which is fine off the RT thread.
//   - Value meaning depends on Kind (see the Kind constants).
// ─────────────────────────────────────────────────────────────────────────────

package events

import (
	"errors"

	"github.com/sugawarayuuta/sonnet"

	"patchbay/utils"
)

// Kind identifies a graph notification.
type Kind uint8

const (
	KindInvalid Kind = iota

	ClientRegistered   // Name = client
	ClientUnregistered // Name = client
	PortRegistered     // Name = port, Value = port id
	PortUnregistered   // Name = port, Value = port id
	PortsConnected     // Name = source port, Peer = destination port
	PortsDisconnected  // Name = source port, Peer = destination port
	XRun               // Value = delay in microseconds
	BufferSize         // Value = frames per period
	SampleRate         // Value = Hz
	GraphOrder         // Graph reordered; no payload
	Shutdown           // Server going away; Name = reason

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:        "invalid",
	ClientRegistered:   "client_registered",
	ClientUnregistered: "client_unregistered",
	PortRegistered:     "port_registered",
	PortUnregistered:   "port_unregistered",
	PortsConnected:     "ports_connected",
	PortsDisconnected:  "ports_disconnected",
	XRun:               "xrun",
	BufferSize:         "buffer_size",
	SampleRate:         "sample_rate",
	GraphOrder:         "graph_order",
	Shutdown:           "shutdown",
}

// ErrUnknownKind reports a kind byte outside the known set.
var ErrUnknownKind = errors.New("events: unknown kind")

// Valid reports whether k names a real notification.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "kind(" + utils.Itoa(int(k)) + ")"
}

// MarshalText renders the kind by name for JSON detail rows.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrUnknownKind
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a kind name back to its value.
func ParseKind(name string) (Kind, error) {
	for k := ClientRegistered; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindInvalid, ErrUnknownKind
}

// Event is one graph notification.
type Event struct {
	Kind  Kind   `json:"kind"`
	Frame uint64 `json:"frame"`           // Graph frame time at post
	Value uint64 `json:"value,omitempty"` // Kind-specific scalar
	Name  string `json:"name,omitempty"`  // Client or port name
	Peer  string `json:"peer,omitempty"`  // Connection peer port
}

// JSON renders the event for storage and logs. Not for the RT thread.
func (e Event) JSON() ([]byte, error) {
	return sonnet.Marshal(e)
}

// ParseJSON decodes an event produced by JSON.
func ParseJSON(b []byte) (Event, error) {
	var e Event
	err := sonnet.Unmarshal(b, &e)
	return e, err
}

// String returns a compact single-line description for diagnostics.
func (e Event) String() string {
	s := e.Kind.String() + " @" + utils.Utoa(e.Frame)
	switch e.Kind {
	case PortsConnected, PortsDisconnected:
		s += " " + e.Name + " -> " + e.Peer
	case XRun:
		s += " delay=" + utils.Utoa(e.Value) + "us"
	case BufferSize:
		s += " frames=" + utils.Utoa(e.Value)
	case SampleRate:
		s += " rate=" + utils.Utoa(e.Value)
	case PortRegistered, PortUnregistered:
		s += " " + e.Name + " id=" + utils.Utoa(e.Value)
	default:
		if e.Name != "" {
			s += " " + e.Name
		}
	}
	return s
}
