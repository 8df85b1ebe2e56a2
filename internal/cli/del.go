package cli

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/install"
)

// DelCommand uninstalls a package: removes its launchers and install
// directory, then drops its ledger entry.
var DelCommand = &cobra.Command{
	Use:   "del <name>",
	Short: "Uninstall a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		l, err := currentLayout()
		if err != nil {
			return err
		}
		ledger, _, err := loadLedger(l)
		if err != nil {
			return err
		}
		rec, ok := ledger.Find(key)
		if !ok {
			return fmt.Errorf("%s is not installed", args[0])
		}

		if err := install.Uninstall(l, rec.InstallPath, rec.CommandNames); err != nil {
			return err
		}
		ledger.Delete(key)
		if err := saveLedger(l, ledger); err != nil {
			return err
		}

		log.Infof("uninstalled %s", args[0])
		return nil
	},
}
