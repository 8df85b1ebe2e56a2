package layout

import (
	"os"
	"runtime"
	"sync"
)

// isElevated reports whether the process is running with elevated
// privileges: root (euid 0) on POSIX, a stand-in "always false" on
// Windows since detecting Administrator token membership needs a
// syscall this module doesn't otherwise need golang.org/x/sys for.
// Computed once per process and never invalidated, per the "process-wide
// probe" modeling this core uses for privilege and interpreter checks.
var isElevated = sync.OnceValue(func() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	return os.Geteuid() == 0
})

// IsElevated reports whether the current process has elevated
// privileges, per isElevated's cached detection.
func IsElevated() bool {
	return isElevated()
}
