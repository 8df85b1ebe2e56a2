package layout

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLayoutRoot(t *testing.T) {
	l, err := NewUser()
	require.NoError(t, err)
	assert.False(t, l.IsSystemInstall())
	assert.True(t, strings.HasSuffix(l.Root(), ".wenget"))
	assert.True(t, strings.HasSuffix(l.LedgerPath(), "installed.json"))
	assert.True(t, strings.HasSuffix(l.BucketsPath(), "buckets.json"))
	assert.True(t, strings.HasSuffix(l.CachePath(), "manifest-cache.json"))
}

func TestSystemLayoutRoot(t *testing.T) {
	l := NewSystem()
	assert.True(t, l.IsSystemInstall())
	if runtime.GOOS != "windows" {
		assert.Equal(t, "/opt/wenget", l.Root())
		bin, err := l.BinDir()
		require.NoError(t, err)
		assert.Equal(t, "/usr/local/bin", bin)
	}
}

func TestCustomBinDirTakesPrecedence(t *testing.T) {
	l := Layout{customBinDir: "/custom/bin"}
	bin, err := l.BinDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/bin", bin)
}

func TestAppDirSanitizesVariantKey(t *testing.T) {
	l, err := NewUser()
	require.NoError(t, err)
	dir := l.AppDir("bun::baseline")
	assert.True(t, strings.HasSuffix(dir, "bun-baseline"))
}

func TestSanitizeComponentIsIdempotent(t *testing.T) {
	once := SanitizeComponent("bun::baseline")
	twice := SanitizeComponent(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "bun-baseline", once)
}

func TestLauncherPathSuffix(t *testing.T) {
	l, err := NewUser()
	require.NoError(t, err)
	path, err := l.LauncherPath("jq")
	require.NoError(t, err)
	if runtime.GOOS == "windows" {
		assert.True(t, strings.HasSuffix(path, "jq.cmd"))
	} else {
		assert.True(t, strings.HasSuffix(path, "jq"))
	}
}

func TestInternalBinDirAlwaysRootBin(t *testing.T) {
	l := NewSystem()
	assert.True(t, strings.HasSuffix(l.InternalBinDir(), "bin"))
}

func TestIsElevatedCachesConsistently(t *testing.T) {
	first := IsElevated()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, IsElevated())
	}
}
