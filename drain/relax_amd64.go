// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - AMD64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: x86-64 Spin-Wait Hint
//
// Description:
//   Emits PAUSE inside the idle branch of the pinned consumer so a spinning event thread
//   yields pipeline resources to its SMT sibling, which may be the audio thread itself.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build amd64 && cgo && !noasm

package drain

/*
#ifdef __x86_64__
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
#else
#error "This file requires x86-64 architecture"
#endif
*/
import "C"

// cpuRelax emits x86-64 PAUSE for spin-wait loops.
func cpuRelax() {
	C.cpu_pause()
}
