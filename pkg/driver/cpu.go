package driver

import "runtime"

// NumCPU reports the number of logical CPUs usable by the process, as
// seen by n_jobs resolution.
func NumCPU() int {
	return runtime.NumCPU()
}
