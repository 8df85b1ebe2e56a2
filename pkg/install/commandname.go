package install

import (
	"strings"

	"github.com/wenget/wenget/pkg/platform"
)

// platformKeywords is the flat set of OS/arch/libc substrings §4.3 step
// 5 checks a filename against to decide whether the trailing
// "-os-arch[-libc]" suffix should be stripped.
var platformKeywords = platform.AllKeywords()

// CommandName computes the published launcher name for an executable's
// filename, per §4.3 step 5: strip a trailing ".exe" (case-insensitive),
// and if what remains names a platform, also strip everything from the
// first "-" or "_" onward.
func CommandName(executableFilename string) string {
	name := executableFilename
	if idx := strings.LastIndex(name, "."); idx >= 0 && strings.EqualFold(name[idx:], ".exe") {
		name = name[:idx]
	}

	lower := strings.ToLower(name)
	hasPlatformKeyword := false
	for _, kw := range platformKeywords {
		if strings.Contains(lower, kw) {
			hasPlatformKeyword = true
			break
		}
	}
	if !hasPlatformKeyword {
		return name
	}

	if idx := strings.IndexAny(name, "-_"); idx >= 0 {
		return name[:idx]
	}
	return name
}
