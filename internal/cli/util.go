package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wenget/wenget/pkg/fetch"
	"github.com/wenget/wenget/pkg/install"
)

func jsonIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// bgContext is the context commands run their network calls under.
// Factored out so a future --timeout flag has one place to thread
// cancellation from.
func bgContext() context.Context {
	return context.Background()
}

func newFetchClient() *fetch.Client {
	return fetch.New()
}

// downloadVia adapts a fetch.Client into an install.Downloader.
func downloadVia(client *fetch.Client) install.Downloader {
	return func(ctx context.Context, url, destPath string) error {
		return client.Download(ctx, url, destPath, nil)
	}
}

// promptConfirm asks a yes/no question on stdin, defaulting to no.
func promptConfirm(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
