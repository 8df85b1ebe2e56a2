package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SearchCommand globs the catalog cache for matching package names.
var SearchCommand = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search the catalog for packages matching a glob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		c, err := loadCache(l)
		if err != nil {
			return err
		}
		matches, err := c.Search(args[0])
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("%s\t%s\t%s\n", m.Package.Name, m.Package.Repo, m.Source.Display())
		}
		return nil
	},
}
