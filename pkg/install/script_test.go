package install

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/platform"
)

func testDownloadScript(content []byte) Downloader {
	return func(ctx context.Context, url, dest string) error {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dest, content, 0o644)
	}
}

func TestInstallScriptPosixBashPublishesSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exercises POSIX exec bits and symlinks")
	}
	l := testLayout(t)
	script := manifest.Script{
		Name: "rustup-init",
		Platforms: map[manifest.ScriptFlavor]manifest.ScriptPlatform{
			manifest.FlavorBash: {URL: "https://example.test/rustup-init.sh"},
		},
	}
	host := platform.Host{OS: platform.Linux, Arch: platform.X86_64}

	result, err := InstallScript(context.Background(), script, host, Options{
		Layout:   l,
		Download: testDownloadScript([]byte("#!/bin/sh\necho hi\n")),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"rustup-init.sh"}, result.Files)
	assert.Equal(t, []string{"rustup-init"}, result.CommandNames)
	assert.Equal(t, string(manifest.FlavorBash), result.Identifier)

	scriptPath := filepath.Join(result.InstallPath, "rustup-init.sh")
	info, err := os.Stat(scriptPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "installed script must be executable")

	launcherPath, err := l.LauncherPath("rustup-init")
	require.NoError(t, err)
	target, err := os.Readlink(launcherPath)
	require.NoError(t, err)
	assert.Equal(t, scriptPath, target)
}

func TestInstallScriptFallsBackToPythonOnPosix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exercises POSIX exec bits and symlinks")
	}
	l := testLayout(t)
	script := manifest.Script{
		Name: "get-tool",
		Platforms: map[manifest.ScriptFlavor]manifest.ScriptPlatform{
			manifest.FlavorPython: {URL: "https://example.test/get-tool.py"},
		},
	}
	host := platform.Host{OS: platform.MacOS, Arch: platform.Aarch64}

	result, err := InstallScript(context.Background(), script, host, Options{
		Layout:   l,
		Download: testDownloadScript([]byte("print('hi')\n")),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"get-tool.py"}, result.Files)
	assert.Equal(t, string(manifest.FlavorPython), result.Identifier)

	launcherPath, err := l.LauncherPath("get-tool")
	require.NoError(t, err)
	// Python on POSIX gets an interpreter wrapper, not a symlink: it
	// cannot be exec'd directly the way a shebang'd bash script can.
	_, linkErr := os.Readlink(launcherPath)
	assert.Error(t, linkErr, "python flavor must not be published as a symlink")

	content, err := os.ReadFile(launcherPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "python3")
	assert.Contains(t, string(content), filepath.Join(result.InstallPath, "get-tool.py"))
}

func TestInstallScriptNoMatchingFlavor(t *testing.T) {
	l := testLayout(t)
	script := manifest.Script{
		Name: "windows-only",
		Platforms: map[manifest.ScriptFlavor]manifest.ScriptPlatform{
			manifest.FlavorPowerShell: {URL: "https://example.test/windows-only.ps1"},
		},
	}
	host := platform.Host{OS: platform.Linux, Arch: platform.X86_64}

	_, err := InstallScript(context.Background(), script, host, Options{
		Layout:   l,
		Download: testDownloadScript(nil),
	})
	require.Error(t, err)
}

func TestScriptFlavorPreferenceOrder(t *testing.T) {
	windows := scriptFlavorPreference(platform.Host{OS: platform.Windows, Arch: platform.X86_64})
	assert.Equal(t, []manifest.ScriptFlavor{manifest.FlavorPowerShell, manifest.FlavorBatch}, windows)

	linux := scriptFlavorPreference(platform.Host{OS: platform.Linux, Arch: platform.X86_64})
	assert.Equal(t, []manifest.ScriptFlavor{manifest.FlavorBash, manifest.FlavorPython}, linux)
}
