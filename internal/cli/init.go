package cli

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// InitCommand creates the wenget root directory and its subdirectories.
var InitCommand = &cobra.Command{
	Use:   "init",
	Short: "Initialize the wenget root directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		if l.IsInitialized() {
			log.Infof("already initialized at %s", l.Root())
			return nil
		}
		if err := l.Init(); err != nil {
			return err
		}
		fmt.Printf("initialized wenget at %s\n", l.Root())
		return nil
	},
}
