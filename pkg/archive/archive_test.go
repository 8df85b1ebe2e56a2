package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o755, Size: int64(len(content))}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "tool-linux-x86_64.tar.gz")
	writeTarGz(t, archivePath, map[string]string{"tool-1.0/bin/tool": "#!/bin/sh\necho hi\n"})

	destDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(archivePath, destDir))

	data, err := os.ReadFile(filepath.Join(destDir, "tool-1.0", "bin", "tool"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo hi")
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "tool-windows-x86_64.zip")
	writeZip(t, archivePath, map[string]string{"tool.exe": "binary-content"})

	destDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(archivePath, destDir))

	data, err := os.ReadFile(filepath.Join(destDir, "tool.exe"))
	require.NoError(t, err)
	assert.Equal(t, "binary-content", string(data))
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, archivePath, map[string]string{"../../etc/passwd": "evil"})

	destDir := filepath.Join(dir, "out")
	err := Extract(archivePath, destDir)
	assert.Error(t, err)
}

func TestCopyStandaloneExecutable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool-linux-x86_64")
	require.NoError(t, os.WriteFile(path, []byte("raw binary"), 0o755))

	destDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(path, destDir))

	data, err := os.ReadFile(filepath.Join(destDir, "tool-linux-x86_64"))
	require.NoError(t, err)
	assert.Equal(t, "raw binary", string(data))

	info, err := os.Stat(filepath.Join(destDir, "tool-linux-x86_64"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "expected executable bit")
}

func TestSafeJoinRejectsEscape(t *testing.T) {
	_, err := safeJoin("/dest", "../outside")
	assert.Error(t, err)

	p, err := safeJoin("/dest", "inside/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "inside/file.txt"), p)
}
