// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - ARM64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: ARM64 Spin-Wait Hint
//
// Description:
//   Emits YIELD inside the idle branch of the pinned consumer.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build arm64 && cgo && !noasm

package drain

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// cpuRelax emits ARM64 YIELD for spin-wait loops.
func cpuRelax() {
	C.cpu_yield()
}
