package platform

import "strings"

// Parsed holds everything detectOS/detectArch/detectLibc can pull out of
// a release-asset filename.
type Parsed struct {
	Format Format
	OS     OS
	HasOS  bool
	Arch   Arch
	HasArch bool
	Libc   Libc
}

// Parse lowercases filename and derives its format, OS, arch, and libc.
func Parse(filename string) Parsed {
	lower := strings.ToLower(filename)
	format := DetectFormat(filename)

	os, hasOS := detectOS(lower, format)
	arch, hasArch := detectArch(lower, os, hasOS)
	libc := detectLibc(lower)

	return Parsed{
		Format:  format,
		OS:      os,
		HasOS:   hasOS,
		Arch:    arch,
		HasArch: hasArch,
		Libc:    libc,
	}
}

// detectOS checks MacOS before Windows (since "darwin" contains "win"),
// then falls back to ".exe implies Windows" when no keyword matched.
func detectOS(lower string, format Format) (OS, bool) {
	for _, os := range osCheckOrder {
		for _, kw := range os.keywords() {
			if strings.Contains(lower, kw) {
				return os, true
			}
		}
	}
	if format == FormatExe {
		return Windows, true
	}
	return "", false
}

// detectArch is context-aware for the bare "x86" token: on macOS it
// means x86_64 (32-bit Mac is obsolete), elsewhere it means i686.
func detectArch(lower string, os OS, hasOS bool) (Arch, bool) {
	if strings.Contains(lower, "x86") && !strings.Contains(lower, "x86_64") {
		if hasOS && os == MacOS {
			return X86_64, true
		}
		return I686, true
	}
	for _, arch := range archCheckOrder {
		for _, kw := range arch.keywords() {
			if strings.Contains(lower, kw) {
				return arch, true
			}
		}
	}
	return "", false
}

func detectLibc(lower string) Libc {
	for _, libc := range libcCheckOrder {
		for _, kw := range libc.keywords() {
			if strings.Contains(lower, kw) {
				return libc
			}
		}
	}
	return Unspecified
}
