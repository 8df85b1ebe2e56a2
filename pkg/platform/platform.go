// Package platform parses release-asset filenames into (OS, Arch, Libc,
// format) tuples and scores them against a host platform, including the
// compatibility fallback tiers (Rosetta, 32-on-64, musl/gnu, Windows
// compiler variant).
package platform

import (
	"fmt"
	"runtime"
)

// OS is a supported target operating system.
type OS string

const (
	Windows OS = "windows"
	Linux   OS = "linux"
	MacOS   OS = "macos"
	FreeBSD OS = "freebsd"
)

// keywords returns the substrings that identify this OS in a lowercased
// filename. Order within the returned slice does not matter, but the
// caller must check MacOS before Windows: "darwin" contains "win".
func (o OS) keywords() []string {
	switch o {
	case Windows:
		return []string{"windows", "win64", "win32", "pc-windows", "win"}
	case Linux:
		return []string{"linux", "unknown-linux"}
	case MacOS:
		return []string{"darwin", "macos", "apple", "osx", "mac"}
	case FreeBSD:
		return []string{"freebsd"}
	}
	return nil
}

// defaultArch is the architecture assumed when a filename names no
// explicit arch. FreeBSD has none: it requires an explicit arch token.
func (o OS) defaultArch() (Arch, bool) {
	switch o {
	case Windows, Linux:
		return X86_64, true
	case MacOS:
		return Aarch64, true
	default:
		return "", false
	}
}

// osCheckOrder lists OS values in the order detectOS must test them so
// that "darwin" is claimed by MacOS before Windows' "win" substring can
// match it.
var osCheckOrder = []OS{MacOS, FreeBSD, Linux, Windows}

// Arch is a supported target CPU architecture.
type Arch string

const (
	X86_64  Arch = "x86_64"
	I686    Arch = "i686"
	Aarch64 Arch = "aarch64"
	Armv7   Arch = "armv7"
)

func (a Arch) keywords() []string {
	switch a {
	case X86_64:
		return []string{"x86_64", "x64", "amd64"}
	case I686:
		return []string{"i686", "i386", "win32"} // "x86" handled separately, context-dependent
	case Aarch64:
		return []string{"aarch64", "arm64"}
	case Armv7:
		return []string{"armv7", "armhf"}
	}
	return nil
}

var archCheckOrder = []Arch{X86_64, Aarch64, Armv7, I686}

// unsupportedArchKeywords never appear in any produced platform
// identifier; an asset naming one of these is rejected outright.
var unsupportedArchKeywords = []string{
	"s390x", "ppc64le", "ppc64", "riscv64", "mips64", "mips", "sparc64",
}

// Libc is the compiler/runtime variant a binary was linked against.
type Libc string

const (
	Gnu         Libc = "gnu"
	Musl        Libc = "musl"
	Msvc        Libc = "msvc"
	Unspecified Libc = ""
)

func (l Libc) keywords() []string {
	switch l {
	case Gnu:
		return []string{"gnu", "glibc"}
	case Musl:
		return []string{"musl"}
	case Msvc:
		return []string{"msvc"}
	}
	return nil
}

var libcCheckOrder = []Libc{Musl, Msvc, Gnu}

// priority ranks libc preference for a given host OS; higher wins.
func (l Libc) priority(os OS) int {
	switch os {
	case Linux:
		switch l {
		case Musl:
			return 3
		case Gnu:
			return 2
		case Msvc:
			return 1
		}
	case Windows:
		switch l {
		case Msvc:
			return 3
		case Gnu:
			return 2
		case Musl:
			return 1
		}
	}
	return 1
}

// Identifier is an OS-Arch[-Libc] platform key, e.g. "linux-x86_64-musl".
type Identifier struct {
	OS   OS
	Arch Arch
	Libc Libc
}

// String renders the canonical `<os>-<arch>` or `<os>-<arch>-<libc>` key.
func (p Identifier) String() string {
	if p.Libc == Unspecified {
		return fmt.Sprintf("%s-%s", p.OS, p.Arch)
	}
	return fmt.Sprintf("%s-%s-%s", p.OS, p.Arch, p.Libc)
}

// ParseIdentifier parses a platform identifier string back into its
// components. Used when reading the preferred_platform preference.
func ParseIdentifier(s string) (Identifier, error) {
	os, arch, libc, ok := splitIdentifier(s)
	if !ok {
		return Identifier{}, fmt.Errorf("platform: invalid identifier %q", s)
	}
	return Identifier{OS: os, Arch: arch, Libc: libc}, nil
}

func splitIdentifier(s string) (OS, Arch, Libc, bool) {
	parts := splitDash(s)
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", false
	}
	os := OS(parts[0])
	switch os {
	case Windows, Linux, MacOS, FreeBSD:
	default:
		return "", "", "", false
	}
	arch := Arch(parts[1])
	switch arch {
	case X86_64, I686, Aarch64, Armv7:
	default:
		return "", "", "", false
	}
	libc := Unspecified
	if len(parts) == 3 {
		libc = Libc(parts[2])
		switch libc {
		case Gnu, Musl, Msvc:
		default:
			return "", "", "", false
		}
	}
	return os, arch, libc, true
}

func splitDash(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// AllKeywords flattens every OS, arch, and libc keyword this package
// recognizes. Used by the install pipeline to decide whether a
// filename names a platform at all (§4.3 step 5: command-name
// derivation only strips the platform suffix when one is present).
func AllKeywords() []string {
	var kws []string
	for _, o := range osCheckOrder {
		kws = append(kws, o.keywords()...)
	}
	for _, a := range archCheckOrder {
		kws = append(kws, a.keywords()...)
	}
	kws = append(kws, "x86")
	for _, l := range libcCheckOrder {
		kws = append(kws, l.keywords()...)
	}
	return kws
}

// Host represents the target platform an install is being resolved for;
// it never carries a Libc preference of its own — libc preference is a
// function of OS, applied during scoring.
type Host struct {
	OS   OS
	Arch Arch
}

// DetectHost maps the running process's GOOS/GOARCH onto a Host. Used
// by the CLI to resolve a platform when the caller doesn't name one
// explicitly.
func DetectHost() Host {
	var os OS
	switch runtime.GOOS {
	case "windows":
		os = Windows
	case "darwin":
		os = MacOS
	case "freebsd":
		os = FreeBSD
	default:
		os = Linux
	}

	var arch Arch
	switch runtime.GOARCH {
	case "amd64":
		arch = X86_64
	case "arm64":
		arch = Aarch64
	case "arm":
		arch = Armv7
	case "386":
		arch = I686
	default:
		arch = X86_64
	}

	return Host{OS: os, Arch: arch}
}

// AllCommonHosts enumerates the eleven (OS, Arch) combinations the
// platform resolver tries when building a package descriptor's platform
// map from a release's assets. Windows-armv7 is omitted: it has no
// real-world release-asset naming convention behind it.
func AllCommonHosts() []Host {
	return []Host{
		{Windows, X86_64}, {Windows, I686}, {Windows, Aarch64},
		{Linux, X86_64}, {Linux, I686}, {Linux, Aarch64}, {Linux, Armv7},
		{MacOS, X86_64}, {MacOS, Aarch64},
		{FreeBSD, X86_64}, {FreeBSD, Aarch64},
	}
}
