package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/repair"
)

var repairForce bool

// RepairCommand checks the three durable JSON documents and resets
// whichever are corrupt, per the documented per-document severity.
var RepairCommand = &cobra.Command{
	Use:   "repair",
	Short: "Check and repair the ledger, bucket list, and manifest cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		actions, err := repair.Repair(repair.Paths{
			Ledger:  l.LedgerPath(),
			Buckets: l.BucketsPath(),
			Cache:   l.CachePath(),
		}, repairForce)
		if err != nil {
			return err
		}
		if len(actions) == 0 {
			fmt.Println("everything is OK")
			return nil
		}
		for _, a := range actions {
			switch {
			case a.Rebuilt:
				fmt.Printf("[%s] %s: deleted, will rebuild on next read\n", a.Severity, a.File)
			case a.BackupPath != "":
				fmt.Printf("[%s] %s: corrupt, backed up to %s and reset\n", a.Severity, a.File, a.BackupPath)
			default:
				fmt.Printf("[%s] %s: missing, using defaults\n", a.Severity, a.File)
			}
		}
		return nil
	},
}

func init() {
	RepairCommand.Flags().BoolVar(&repairForce, "force", false, "rebuild the manifest cache even if it parses cleanly")
}
