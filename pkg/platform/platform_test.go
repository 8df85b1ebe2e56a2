package platform

import "testing"

func TestDetectOS_MacBeforeWindows(t *testing.T) {
	p := Parse("tool-darwin-amd64.tar.gz")
	if p.OS != MacOS {
		t.Fatalf("expected macOS (darwin contains win), got %v", p.OS)
	}
}

func TestDetectOS_ExeImpliesWindows(t *testing.T) {
	p := Parse("tool.exe")
	if !p.HasOS || p.OS != Windows {
		t.Fatalf("expected .exe to imply windows, got %+v", p)
	}
}

func TestDetectArch_X86ContextDependent(t *testing.T) {
	mac := Parse("tool-macos-x86.tar.gz")
	if mac.Arch != X86_64 {
		t.Fatalf("x86 on macOS should resolve to x86_64, got %v", mac.Arch)
	}
	linux := Parse("tool-linux-x86.tar.gz")
	if linux.Arch != I686 {
		t.Fatalf("x86 elsewhere should resolve to i686, got %v", linux.Arch)
	}
}

func TestExclusionList(t *testing.T) {
	for _, name := range []string{
		"tool-source.tar.gz", "tool.deb", "tool.rpm", "checksums.txt",
		"tool.sha256", "tool.sig", "README.md",
	} {
		if _, ok := Score(name, Host{Linux, X86_64}); ok {
			t.Errorf("%q should be excluded", name)
		}
	}
}

func TestUnsupportedArchRejected(t *testing.T) {
	for _, name := range []string{
		"tool-linux-s390x.tar.gz", "tool-linux-ppc64le.tar.gz",
		"tool-linux-riscv64.tar.gz",
	} {
		if _, ok := Score(name, Host{Linux, X86_64}); ok {
			t.Errorf("%q names an unsupported arch and must be rejected", name)
		}
		if ContainsUnsupportedArch(name) == false {
			t.Errorf("expected %q to contain an unsupported-arch keyword", name)
		}
	}
}

func TestLinuxPrefersMusl(t *testing.T) {
	assets := []string{"app-linux-x86_64-gnu.tar.gz", "app-linux-x86_64-musl.tar.gz"}
	best, ok := Best(assets, Host{Linux, X86_64})
	if !ok || best.Filename != "app-linux-x86_64-musl.tar.gz" {
		t.Fatalf("expected musl to win on Linux, got %+v", best)
	}

	ids := ExtractIdentifiers(assets)
	if _, ok := ids["linux-x86_64-gnu"]; !ok {
		t.Error("expected linux-x86_64-gnu identifier to be present")
	}
	if _, ok := ids["linux-x86_64-musl"]; !ok {
		t.Error("expected linux-x86_64-musl identifier to be present")
	}
}

func TestWindowsPrefersMsvc(t *testing.T) {
	assets := []string{"app-windows-x86_64-gnu.zip", "app-windows-x86_64-msvc.zip"}
	best, ok := Best(assets, Host{Windows, X86_64})
	if !ok || best.Filename != "app-windows-x86_64-msvc.zip" {
		t.Fatalf("expected msvc to win on Windows, got %+v", best)
	}
}

func TestMacRosettaFallback(t *testing.T) {
	available := map[string]bool{"macos-x86_64": true}
	m, ok := FindBestMatch(Host{MacOS, Aarch64}, available)
	if !ok {
		t.Fatal("expected a fallback match")
	}
	if m.IsExact {
		t.Error("expected fallback, not exact match")
	}
	if m.Fallback != FallbackX64OnArm {
		t.Errorf("expected X64OnArm fallback, got %v", m.Fallback)
	}
	if !m.RequiresConfirmation {
		t.Error("Rosetta fallback should require confirmation")
	}
}

func TestMuslOnGnuDoesNotRequireConfirmation(t *testing.T) {
	if FallbackMuslOnGnu.RequiresConfirmation() {
		t.Error("musl-on-gnu fallback should not require confirmation")
	}
}

func TestFreeBSDRequiresExplicitArch(t *testing.T) {
	if _, ok := Score("tool-freebsd.tar.gz", Host{FreeBSD, X86_64}); ok {
		t.Error("FreeBSD asset with no explicit arch should not score")
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	cases := []Identifier{
		{Linux, X86_64, Unspecified},
		{Linux, X86_64, Musl},
		{Windows, Aarch64, Msvc},
	}
	for _, c := range cases {
		parsed, err := ParseIdentifier(c.String())
		if err != nil {
			t.Fatalf("ParseIdentifier(%q): %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("round trip mismatch: %+v != %+v", parsed, c)
		}
	}
}

func TestExtractIdentifiersAllCommonHosts(t *testing.T) {
	assets := []string{
		"app-windows-x86_64-msvc.zip",
		"app-linux-x86_64-musl.tar.gz",
		"app-macos-aarch64.tar.gz",
		"app-freebsd-x86_64.tar.gz",
		"source.tar.gz",
		"app.sha256",
	}
	ids := ExtractIdentifiers(assets)
	for _, want := range []string{"windows-x86_64-msvc", "linux-x86_64-musl", "macos-aarch64", "freebsd-x86_64"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("expected identifier %q in %v", want, ids)
		}
	}
}
