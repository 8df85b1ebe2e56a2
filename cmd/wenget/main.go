package main

import (
	"os"

	"github.com/wenget/wenget/internal/cli"
)

// version and commit are set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	os.Exit(cli.Execute())
}
