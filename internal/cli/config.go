package cli

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/config"
)

// ConfigCommand groups the preferences subcommands.
var ConfigCommand = &cobra.Command{
	Use:   "config",
	Short: "View or change persisted preferences (config.toml)",
}

var configGetCommand = &cobra.Command{
	Use:   "get",
	Short: "Print the current preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		prefs, err := config.Load(l.ConfigPath())
		if err != nil {
			return err
		}
		fmt.Printf("preferred_platform: %s\n", prefs.PreferredPlatform)
		fmt.Printf("custom_bin_path:    %s\n", prefs.CustomBinPath)
		return nil
	},
}

var configSetCommand = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a preference (preferred_platform or custom_bin_path)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		prefs, err := config.Load(l.ConfigPath())
		if err != nil {
			return err
		}
		switch args[0] {
		case "preferred_platform":
			prefs.PreferredPlatform = args[1]
		case "custom_bin_path":
			prefs.CustomBinPath = args[1]
		default:
			return fmt.Errorf("unknown preference %q (want preferred_platform or custom_bin_path)", args[0])
		}
		if err := prefs.Validate(); err != nil {
			return err
		}
		if err := config.Save(l.ConfigPath(), prefs); err != nil {
			return err
		}
		log.Infof("set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	ConfigCommand.AddCommand(configGetCommand)
	ConfigCommand.AddCommand(configSetCommand)
}
