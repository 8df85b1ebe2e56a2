package install

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/wenget/wenget/pkg/wenerr"
)

var docExtensions = map[string]bool{
	".md": true, ".txt": true, ".rst": true, ".html": true, ".pdf": true,
	".doc": true, ".docx": true,
	".1": true, ".2": true, ".3": true, ".4": true, ".5": true, ".6": true, ".7": true, ".8": true,
}

var licenseFragments = []string{
	"license", "licence", "copying", "unlicense", "notice", "readme",
	"changelog", "changes", "history", "authors", "contributors",
	"credits", "thanks", "todo", "news",
}

var configExtensions = map[string]bool{
	".yml": true, ".yaml": true, ".toml": true, ".json": true,
	".xml": true, ".ini": true, ".cfg": true, ".conf": true,
}

var completionExtensions = map[string]bool{
	".fish": true, ".bash": true, ".zsh": true, ".ps1": true,
}

var nonExecutableExtensions = map[string]bool{
	".dylib": true, ".dll": true, ".a": true, ".pc": true,
}

var excludedPathFragments = []string{"test", "debug", "bench", "example"}

// isExcluded applies §4.4's exclusion rules.
func isExcluded(relPath string) bool {
	lower := strings.ToLower(relPath)
	base := filepath.Base(lower)
	ext := filepath.Ext(base)

	if docExtensions[ext] {
		return true
	}
	if configExtensions[ext] {
		return true
	}
	if nonExecutableExtensions[ext] {
		return true
	}
	if strings.HasSuffix(base, ".so") || strings.Contains(base, ".so.") {
		return true
	}

	stem := strings.TrimSuffix(base, ext)
	for _, frag := range licenseFragments {
		if strings.Contains(stem, frag) {
			return true
		}
	}

	if (strings.Contains(lower, "complete") || strings.Contains(lower, "completion")) &&
		(completionExtensions[ext] || strings.HasPrefix(base, "_")) {
		return true
	}

	for _, frag := range excludedPathFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}

	return false
}

// isCandidate applies §4.4's "consider as a candidate" rule, which
// differs by target OS.
func isCandidate(relPath string, execBit bool) bool {
	lower := strings.ToLower(relPath)
	if runtime.GOOS == "windows" {
		return strings.HasSuffix(lower, ".exe")
	}
	if filepath.Ext(relPath) == "" {
		return true
	}
	if strings.Contains(filepath.ToSlash(lower), "bin/") {
		return true
	}
	return strings.HasSuffix(lower, ".sh")
}

func scoreCandidate(relPath string, execBit bool, packageName string) int {
	lower := strings.ToLower(filepath.ToSlash(relPath))
	base := filepath.Base(lower)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := strings.ToLower(packageName)

	score := 0
	if execBit {
		score += 35
	}
	if stem == name {
		score += 100
	} else if strings.Contains(stem, name) || strings.Contains(name, stem) {
		score += 50
	} else if isAcronymOf(stem, name) || strings.HasPrefix(name, stem) {
		score += 40
	}
	if strings.Contains(lower, "bin/") {
		score += 30
	}
	if strings.Contains(lower, "target/release/") {
		score += 25
	}

	depth := strings.Count(filepath.ToSlash(relPath), "/")
	if depth <= 1 {
		score += 20
	} else if depth <= 2 {
		score += 10
	}

	if !strings.ContainsAny(stem, "-_") {
		score += 5
	}

	return score
}

// isAcronymOf reports whether stem is a plausible acronym of name: the
// first letter of each '-'/'_'-separated segment of name, concatenated.
func isAcronymOf(stem, name string) bool {
	segments := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	if len(segments) < 2 {
		return false
	}
	var acronym strings.Builder
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		acronym.WriteByte(seg[0])
	}
	return acronym.String() == stem
}

// ExtractedFile is one file produced by archive extraction, relative to
// the install directory, with its on-disk executable bit.
type ExtractedFile struct {
	RelPath string
	ExecBit bool
}

// SelectExecutable scores every extracted file per §4.4 and returns the
// install-directory-relative path of the best candidate.
func SelectExecutable(files []ExtractedFile, packageName string) (string, error) {
	best := ""
	bestScore := 0
	found := false
	anyExecBit := false

	for _, f := range files {
		if isExcluded(f.RelPath) {
			continue
		}
		if f.ExecBit {
			anyExecBit = true
		}
		if !isCandidate(f.RelPath, f.ExecBit) {
			continue
		}
		score := scoreCandidate(f.RelPath, f.ExecBit, packageName)
		if score > 0 && (!found || score > bestScore) {
			best = f.RelPath
			bestScore = score
			found = true
		}
	}

	if !found && !anyExecBit {
		return "", wenerr.Newf(wenerr.ExecutableNotFound, "SelectExecutable",
			"no candidate executable found for package %q among %d extracted files", packageName, len(files))
	}
	if !found {
		// Some non-excluded file had the exec bit but failed the
		// candidate rule (e.g. it has an extension and lives outside
		// bin/). Fall back to the first such file rather than failing
		// outright.
		for _, f := range files {
			if f.ExecBit && !isExcluded(f.RelPath) {
				return f.RelPath, nil
			}
		}
		return "", wenerr.Newf(wenerr.ExecutableNotFound, "SelectExecutable",
			"no candidate executable found for package %q among %d extracted files", packageName, len(files))
	}
	return best, nil
}

// statExecBit reports the POSIX executable bit for path; always false
// on Windows where there is no such concept.
func statExecBit(path string) bool {
	if runtime.GOOS == "windows" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&0o111 != 0
}
