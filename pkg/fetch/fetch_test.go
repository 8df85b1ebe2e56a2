package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTextReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := New()
	body, err := c.FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", body)
}

func TestFetchJSONUnmarshals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"jq"}`))
	}))
	defer srv.Close()

	c := New()
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.FetchJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "jq", out.Name)
}

func TestFetchTextNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	_, err := c.FetchText(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestDownloadWritesFileAtomically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "tool")

	var progressed int64
	c := New()
	err := c.Download(context.Background(), srv.URL, dest, func(downloaded, total int64) {
		progressed = downloaded
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "binary-payload", string(data))
	assert.Equal(t, int64(len("binary-payload")), progressed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp file")
}

func TestDownload404DoesNotRetryForever(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	c.http.RetryMax = 0
	dest := filepath.Join(t.TempDir(), "tool")
	err := c.Download(context.Background(), srv.URL, dest, nil)
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 3, "a 4xx should not be retried indefinitely")
}
