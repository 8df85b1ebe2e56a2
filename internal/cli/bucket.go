package cli

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/manifest"
)

var (
	bucketPriority int
	bucketDisabled bool
)

// BucketCommand groups the bucket management subcommands.
var BucketCommand = &cobra.Command{
	Use:   "bucket",
	Short: "Manage configured catalog buckets",
}

var bucketAddCommand = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a bucket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		buckets, _, err := loadBuckets(l)
		if err != nil {
			return err
		}
		if _, ok := buckets.Find(args[0]); ok {
			return fmt.Errorf("a bucket named %q already exists", args[0])
		}
		buckets.Buckets = append(buckets.Buckets, manifest.Bucket{
			Name:     args[0],
			URL:      args[1],
			Enabled:  !bucketDisabled,
			Priority: bucketPriority,
		})
		if err := saveBuckets(l, buckets); err != nil {
			return err
		}
		log.Infof("added bucket %s", args[0])
		return nil
	},
}

var bucketDelCommand = &cobra.Command{
	Use:   "del <name>",
	Short: "Remove a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		buckets, _, err := loadBuckets(l)
		if err != nil {
			return err
		}
		kept := buckets.Buckets[:0]
		removed := false
		for _, b := range buckets.Buckets {
			if b.Name == args[0] {
				removed = true
				continue
			}
			kept = append(kept, b)
		}
		if !removed {
			return fmt.Errorf("no bucket named %q", args[0])
		}
		buckets.Buckets = kept
		if err := saveBuckets(l, buckets); err != nil {
			return err
		}
		log.Infof("removed bucket %s", args[0])
		return nil
	},
}

var bucketListCommand = &cobra.Command{
	Use:   "list",
	Short: "List configured buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		buckets, _, err := loadBuckets(l)
		if err != nil {
			return err
		}
		for _, b := range buckets.Buckets {
			fmt.Printf("%s\t%s\tenabled=%t\tpriority=%d\n", b.Name, b.URL, b.Enabled, b.Priority)
		}
		return nil
	},
}

var bucketRefreshCommand = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the manifest cache from configured buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		c, err := refreshCache(l)
		if err != nil {
			return err
		}
		log.Infof("cache rebuilt: %d packages across %d sources", len(c.All()), len(c.Sources))
		return nil
	},
}

var bucketCreateCommand = &cobra.Command{
	Use:   "create <path>",
	Short: "Create an empty local source manifest file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := manifest.SourceManifest{Packages: []manifest.Package{}}
		data, err := jsonIndent(sm)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return err
		}
		log.Infof("created empty source manifest at %s", args[0])
		return nil
	},
}

func init() {
	bucketAddCommand.Flags().IntVar(&bucketPriority, "priority", 100, "bucket processing priority (list order still governs merge, this is informational)")
	bucketAddCommand.Flags().BoolVar(&bucketDisabled, "disabled", false, "add the bucket disabled")

	BucketCommand.AddCommand(bucketAddCommand)
	BucketCommand.AddCommand(bucketDelCommand)
	BucketCommand.AddCommand(bucketListCommand)
	BucketCommand.AddCommand(bucketRefreshCommand)
	BucketCommand.AddCommand(bucketCreateCommand)
}
