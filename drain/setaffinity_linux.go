// setaffinity_linux.go - Linux CPU affinity via sched_setaffinity(2)

//go:build linux && !tinygo

package drain

import (
	"golang.org/x/sys/unix"

	"patchbay/debug"
	"patchbay/utils"
)

// setAffinity pins the calling thread to cpu. Failure is logged and the
// consumer keeps running unpinned.
func setAffinity(cpu int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		debug.DropError("drain: pin consumer to core "+utils.Itoa(cpu), err)
	}
}
