package platform

// Score returns the match score of filename against host, and true if
// the asset is a candidate at all. A false return means the asset is
// excluded, unsupported, or names a mismatching OS/arch.
func Score(filename string, host Host) (int, bool) {
	if IsExcluded(filename) || ContainsUnsupportedArch(filename) {
		return 0, false
	}

	p := Parse(filename)
	if p.Format == FormatUnsupported {
		return 0, false
	}
	if !p.HasOS || p.OS != host.OS {
		return 0, false
	}

	score := 100 // OS match, mandatory

	switch {
	case p.HasArch && p.Arch == host.Arch:
		score += 50
	case p.HasArch:
		// Explicit architecture mismatch.
		return 0, false
	default:
		defArch, ok := host.OS.defaultArch()
		if !ok {
			// FreeBSD: no default arch, an explicit arch is required.
			return 0, false
		}
		if host.Arch == defArch {
			score += 25
		}
	}

	if p.Libc != Unspecified {
		score += p.Libc.priority(host.OS) * 10
	}

	score += p.Format.score()

	return score, true
}

// Candidate is one scored asset, carrying the libc variant it was
// detected with so multi-variant extraction can build distinct
// identifiers for, e.g., linux-x86_64-gnu and linux-x86_64-musl.
type Candidate struct {
	Filename string
	Score    int
	Libc     Libc
}

// ScoreAll scores every filename against host and returns the subset
// that qualify, sorted by score descending (ties keep input order).
func ScoreAll(filenames []string, host Host) []Candidate {
	var out []Candidate
	for _, f := range filenames {
		score, ok := Score(f, host)
		if !ok {
			continue
		}
		out = append(out, Candidate{Filename: f, Score: score, Libc: Parse(f).Libc})
	}
	stableSortByScoreDesc(out)
	return out
}

// Best returns the single highest-scoring candidate for host, or false
// if none match.
func Best(filenames []string, host Host) (Candidate, bool) {
	all := ScoreAll(filenames, host)
	if len(all) == 0 {
		return Candidate{}, false
	}
	return all[0], true
}

func stableSortByScoreDesc(c []Candidate) {
	// Simple stable insertion sort: candidate counts per release are
	// small (tens, not thousands), and this keeps tie ordering equal to
	// discovery order as required by the executable-selector's own tie
	// rule and the invariant tests in §8.
	for i := 1; i < len(c); i++ {
		j := i
		for j > 0 && c[j-1].Score < c[j].Score {
			c[j-1], c[j] = c[j], c[j-1]
			j--
		}
	}
}

// ExtractIdentifiers builds the full platform-identifier → best-asset
// map for a release's assets: every (OS, Arch) in AllCommonHosts() is
// probed independently and ALL scoring assets are kept (not just the
// best), so a release with both gnu and musl Linux x86_64 assets yields
// two distinct identifiers.
func ExtractIdentifiers(filenames []string) map[string]Candidate {
	out := make(map[string]Candidate)
	for _, host := range AllCommonHosts() {
		for _, cand := range ScoreAll(filenames, host) {
			id := Identifier{OS: host.OS, Arch: host.Arch, Libc: cand.Libc}
			key := id.String()
			if _, exists := out[key]; !exists {
				out[key] = cand
			}
		}
	}
	return out
}
