// setaffinity_stub.go - no-op CPU affinity where sched_setaffinity(2) is unavailable

//go:build !linux || tinygo

package drain

//go:nosplit
//go:inline
func setAffinity(cpu int) {}
