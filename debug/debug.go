// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostics for the patch-bay pipeline
//
// Purpose:
//   - Logs infrequent error paths without pulling in fmt or a logger.
//   - Used for setup failures, dropped-event summaries, journal errors.
//
// Notes:
//   - Plain string concatenation, written straight to stderr.
//   - Never call from the process callback: concatenation allocates.
//
// ⚠️ Never invoke in the real-time producer path.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"patchbay/msgring"
	"patchbay/utils"
)

// DropError logs "<prefix>: <err>" or, with a nil error, just "<prefix>".
//
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs "<prefix>: <message>".
// Used for lifecycle transitions and periodic summaries.
//
//go:inline
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// DropRingState logs a one-line snapshot of ring occupancy.
func DropRingState(prefix string, s msgring.State) {
	DropMessage(prefix,
		"cap="+utils.Utoa(s.Capacity)+
			" used="+utils.Utoa(s.Used)+
			" w="+utils.Utoa(s.WriteIdx)+"@"+utils.Utoa(s.WriteOff)+
			" r="+utils.Utoa(s.ReadIdx)+"@"+utils.Utoa(s.ReadOff))
}
