package utils

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// events.DecodeView uses it for names decoded straight out of ring payloads.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b views a string as a read-only []byte without allocation.
// ⚠️ The result must never be written to.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Number Formatting — Cold-Path Diagnostics
///////////////////////////////////////////////////////////////////////////////

// Itoa formats n in base 10 with a single allocation for the result.
// Avoids strconv so cold-path log lines stay free of the fmt machinery.
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)

	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if n < 0 {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

// Utoa is Itoa for unsigned counters (ring indices, sequence numbers).
func Utoa(u uint64) string {
	if u == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Raw Output — Direct File Descriptor Writes
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg to stderr (fd 2) with no buffering and no allocation.
// Errors are dropped: there is nowhere left to report them.
//
//go:inline
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = unix.Write(2, S2b(msg))
}

// PrintInfo writes msg to stdout (fd 1) with no buffering and no allocation.
//
//go:inline
func PrintInfo(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = unix.Write(1, S2b(msg))
}
