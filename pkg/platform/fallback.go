package platform

// FallbackKind names a compatibility tier consulted only when no exact
// match exists for the host platform.
type FallbackKind string

const (
	FallbackArch32On64 FallbackKind = "arch_32_on_64"
	FallbackX64OnArm   FallbackKind = "x64_on_arm"
	FallbackMuslOnGnu  FallbackKind = "musl_on_gnu"
	FallbackGnuOnMusl  FallbackKind = "gnu_on_musl"
	FallbackWinCompiler FallbackKind = "windows_compiler_variant"
)

// RequiresConfirmation reports whether choosing this fallback tier
// should pause and ask the user before proceeding. Architecture
// fallbacks (emulation, 32-on-64) do; compiler-variant fallbacks don't.
func (k FallbackKind) RequiresConfirmation() bool {
	switch k {
	case FallbackArch32On64, FallbackX64OnArm:
		return true
	case FallbackMuslOnGnu, FallbackGnuOnMusl, FallbackWinCompiler:
		return false
	}
	return true
}

// fallbackTier is one candidate identifier to try, in priority order,
// for a given host when no exact match exists.
type fallbackTier struct {
	ID   Identifier
	Kind FallbackKind
}

// fallbacksFor returns the ordered fallback tiers for host. Only
// Linux/x86_64, macOS/aarch64, Windows/x86_64, and Windows/aarch64 have
// any defined fallback path; all others return nil.
func fallbacksFor(host Host) []fallbackTier {
	switch {
	case host.OS == Linux && host.Arch == X86_64:
		return []fallbackTier{
			{Identifier{Linux, I686, Unspecified}, FallbackArch32On64},
			{Identifier{Linux, I686, Musl}, FallbackArch32On64},
			{Identifier{Linux, I686, Gnu}, FallbackArch32On64},
		}
	case host.OS == MacOS && host.Arch == Aarch64:
		return []fallbackTier{
			{Identifier{MacOS, X86_64, Unspecified}, FallbackX64OnArm},
		}
	case host.OS == Windows && host.Arch == X86_64:
		return []fallbackTier{
			{Identifier{Windows, I686, Unspecified}, FallbackArch32On64},
			{Identifier{Windows, I686, Msvc}, FallbackArch32On64},
			{Identifier{Windows, I686, Gnu}, FallbackArch32On64},
		}
	case host.OS == Windows && host.Arch == Aarch64:
		return []fallbackTier{
			{Identifier{Windows, X86_64, Unspecified}, FallbackX64OnArm},
			{Identifier{Windows, X86_64, Msvc}, FallbackX64OnArm},
			{Identifier{Windows, I686, Unspecified}, FallbackX64OnArm},
		}
	default:
		return nil
	}
}

// Match is one resolved candidate returned by FindBestMatch: either an
// exact identifier present in the package's platform map, or an
// accepted compatibility fallback.
type Match struct {
	Identifier           Identifier
	IsExact              bool
	Fallback             FallbackKind // zero value when IsExact
	RequiresConfirmation bool
}

// FindBestMatch chooses the best platform identifier for host among the
// keys of available (a package descriptor's platform map). Exact
// matches for host's own identifiers (with and without libc) are tried
// first, preferring the host's own libc priority ordering; only when
// none exist are fallback tiers consulted, in the order fallbacksFor
// returns them.
func FindBestMatch(host Host, available map[string]bool) (Match, bool) {
	for _, id := range exactIdentifiersFor(host) {
		if available[id.String()] {
			return Match{Identifier: id, IsExact: true}, true
		}
	}
	for _, tier := range fallbacksFor(host) {
		if available[tier.ID.String()] {
			return Match{
				Identifier:           tier.ID,
				IsExact:              false,
				Fallback:             tier.Kind,
				RequiresConfirmation: tier.Kind.RequiresConfirmation(),
			}, true
		}
	}
	return Match{}, false
}

// exactIdentifiersFor lists the identifiers that count as an exact host
// match, highest libc preference first, plain (no-libc) last.
func exactIdentifiersFor(host Host) []Identifier {
	var ids []Identifier
	switch host.OS {
	case Linux:
		ids = append(ids,
			Identifier{host.OS, host.Arch, Musl},
			Identifier{host.OS, host.Arch, Gnu},
		)
	case Windows:
		ids = append(ids,
			Identifier{host.OS, host.Arch, Msvc},
			Identifier{host.OS, host.Arch, Gnu},
		)
	}
	return append(ids, Identifier{host.OS, host.Arch, Unspecified})
}
