// internal/runutil/runutil.go
package runutil

import "runtime"

// EffectiveThreads resolves the --threads value: n when positive,
// otherwise one worker per CPU.
func EffectiveThreads(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// WriterBuffer sizes the channel between the pipeline and a result writer.
func WriterBuffer(threads int) int {
	if threads < 1 {
		threads = 1
	}
	return threads * 4
}
