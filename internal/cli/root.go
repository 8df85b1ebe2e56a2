// Package cli wires the wenget command tree: init, add, list, info,
// search, update, del, bucket management, and repair.
package cli

import (
	"github.com/apex/log"
	loghandler "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/config"
	"github.com/wenget/wenget/pkg/layout"
	"github.com/wenget/wenget/pkg/platform"
)

var (
	verbose      bool
	quiet        bool
	rootOverride string
	binOverride  string
)

// Version and Commit are set by cmd/wenget/main.go from build-time
// ldflags; they back the --version flag.
var (
	Version = "dev"
	Commit  = "none"
)

// RootCmd is the base command when wenget is invoked with no subcommand.
var RootCmd = &cobra.Command{
	Use:   "wenget",
	Short: "Install prebuilt binaries straight from GitHub release pages",
	Long: `wenget resolves, downloads, and publishes prebuilt binaries from
GitHub-style release pages, tracking what it installed so later runs
can update or remove them cleanly.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(loghandler.Default)
		switch {
		case verbose:
			log.SetLevel(log.DebugLevel)
		case quiet:
			log.SetLevel(log.ErrorLevel)
		default:
			log.SetLevel(log.InfoLevel)
		}
	},
}

// Execute runs the command tree. Called once from main, after main has
// had a chance to set Version/Commit from build-time ldflags.
func Execute() int {
	RootCmd.Version = Version
	RootCmd.SetVersionTemplate(Version + " (" + Commit + ")\n")
	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

func init() {
	cobra.EnableCommandSorting = false

	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress progress output")
	RootCmd.PersistentFlags().StringVar(&rootOverride, "root", "", "override the wenget root directory (default: privilege-derived)")
	RootCmd.PersistentFlags().StringVar(&binOverride, "bin-dir", "", "override the directory launchers are published into")

	RootCmd.AddCommand(InitCommand)
	RootCmd.AddCommand(AddCommand)
	RootCmd.AddCommand(ListCommand)
	RootCmd.AddCommand(InfoCommand)
	RootCmd.AddCommand(SearchCommand)
	RootCmd.AddCommand(UpdateCommand)
	RootCmd.AddCommand(DelCommand)
	RootCmd.AddCommand(BucketCommand)
	RootCmd.AddCommand(RepairCommand)
	RootCmd.AddCommand(ConfigCommand)
}

// currentLayout resolves the Layout to operate against. --root and
// --bin-dir always win; absent those, config.toml's custom_bin_path
// (§6) applies on top of the privilege-derived root.
func currentLayout() (layout.Layout, error) {
	if rootOverride != "" {
		return layout.NewAt(rootOverride, binOverride), nil
	}
	l, err := layout.New(binOverride)
	if err != nil {
		return layout.Layout{}, err
	}
	if binOverride != "" || !l.IsInitialized() {
		return l, nil
	}
	prefs, err := config.Load(l.ConfigPath())
	if err != nil {
		return layout.Layout{}, err
	}
	if prefs.CustomBinPath == "" {
		return l, nil
	}
	return layout.NewAt(l.Root(), prefs.CustomBinPath), nil
}

// preferredHost resolves the platform an install should target:
// config.toml's preferred_platform (§6) when set and valid, falling
// back to the running process's actual platform.
func preferredHost(l layout.Layout) platform.Host {
	prefs, err := config.Load(l.ConfigPath())
	if err != nil || prefs.PreferredPlatform == "" {
		return platform.DetectHost()
	}
	id, err := platform.ParseIdentifier(prefs.PreferredPlatform)
	if err != nil {
		log.WithError(err).Warnf("config.toml preferred_platform %q is invalid, detecting instead", prefs.PreferredPlatform)
		return platform.DetectHost()
	}
	return platform.Host{OS: id.OS, Arch: id.Arch}
}
