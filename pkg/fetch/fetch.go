// Package fetch provides the default release-hosting HTTP client: text
// and JSON retrieval for bucket manifests, and binary download with
// progress reporting. It is a concrete implementation of the fetch
// capability the rest of the core consumes only as a function value
// (see pkg/cache.BucketFetcher), so tests never need this package at
// all.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// ProgressFunc reports download progress as bytes accumulate.
type ProgressFunc func(downloaded, total int64)

// Client wraps a retrying HTTP client with GitHub token auth.
type Client struct {
	http *retryablehttp.Client
}

// New constructs a Client with sane retry defaults and a quiet logger
// (retryablehttp logs noisily to stderr by default).
func New() *Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = 3
	return &Client{http: c}
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch: build request for %s", url)
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// FetchText retrieves url's body as a string.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetch: GET %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: read body of %s", url)
	}
	return string(body), nil
}

// FetchJSON retrieves url and unmarshals its body into out.
func (c *Client) FetchJSON(ctx context.Context, url string, out any) error {
	body, err := c.FetchText(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return errors.Wrapf(err, "fetch: parse JSON from %s", url)
	}
	return nil
}

// Download retrieves url and writes it atomically to destPath (temp
// file in the same directory, then rename), reporting progress if a
// non-nil callback is given. The outer attempt loop is driven by
// backoff/v4 with exponential backoff and a 3-attempt cap, wrapping
// retryablehttp's own per-request retries for transport-level failures.
func (c *Client) Download(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.Wrap(err, "fetch: create destination directory")
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	return backoff.Retry(func() error {
		return c.downloadOnce(ctx, url, destPath, progress)
	}, backoff.WithContext(policy, ctx))
}

func (c *Client) downloadOnce(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetch: GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.Errorf("fetch: GET %s: unexpected status %d", url, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "fetch: create temp file"))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	written, copyErr := copyWithProgress(tmp, resp.Body, resp.ContentLength, progress)
	closeErr := tmp.Close()
	if copyErr != nil {
		return errors.Wrap(copyErr, "fetch: copy response body")
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "fetch: close temp file")
	}
	if written == 0 {
		return errors.New("fetch: no content downloaded")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return backoff.Permanent(errors.Wrap(err, "fetch: move downloaded file into place"))
	}
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	var written int64
	buf := make([]byte, 32*1024)

	for {
		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[0:nr])
			if writeErr != nil {
				return written, writeErr
			}
			written += int64(nw)
			if progress != nil {
				progress(written, total)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
