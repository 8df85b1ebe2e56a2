package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// ListCommand prints every package in the installed ledger.
var ListCommand = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		ledger, _, err := loadLedger(l)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(ledger.Packages))
		for k := range ledger.Packages {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			r := ledger.Packages[k]
			fmt.Printf("%s\t%s\t%s\t%s\n", k, r.Version, r.Platform, r.Source.Display())
		}
		return nil
	},
}
