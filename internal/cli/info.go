package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/manifest"
)

// InfoCommand shows detail for one package, installed or catalog-known.
var InfoCommand = &cobra.Command{
	Use:   "info <name>",
	Short: "Show detail about a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		l, err := currentLayout()
		if err != nil {
			return err
		}

		ledger, _, err := loadLedger(l)
		if err != nil {
			return err
		}
		if rec, ok := ledger.Find(name); ok {
			printInstalledRecord(rec)
			return nil
		}

		c, err := loadCache(l)
		if err != nil {
			return err
		}
		if entry, ok := c.FindByName(name); ok {
			printCatalogPackage(entry.Package, entry.Source)
			return nil
		}

		return fmt.Errorf("no package named %q is installed or in the catalog", name)
	},
}

func printInstalledRecord(r manifest.InstalledRecord) {
	fmt.Printf("name:     %s\n", r.RepoName)
	if r.Variant != "" {
		fmt.Printf("variant:  %s\n", r.Variant)
	}
	fmt.Printf("version:  %s\n", r.Version)
	fmt.Printf("platform: %s\n", r.Platform)
	fmt.Printf("source:   %s\n", r.Source.Display())
	fmt.Printf("path:     %s\n", r.InstallPath)
	fmt.Printf("commands: %v\n", r.CommandNames)
}

func printCatalogPackage(p manifest.Package, src manifest.Source) {
	fmt.Printf("name:        %s\n", p.Name)
	fmt.Printf("repo:        %s\n", p.Repo)
	fmt.Printf("description: %s\n", p.Description)
	fmt.Printf("source:      %s\n", src.Display())
	fmt.Printf("platforms:   %d\n", len(p.Platforms))
}
