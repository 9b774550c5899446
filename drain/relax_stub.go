// relax_stub.go — no-op cpuRelax for builds without cgo, with noasm, or on
// architectures lacking a dedicated spin hint.

//go:build (!amd64 && !arm64) || !cgo || noasm

package drain

//go:nosplit
//go:inline
func cpuRelax() {}
