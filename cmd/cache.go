package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	awspkg "github.com/guimove/binfit/internal/aws"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the instance type cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached instance capacities and prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearCache(cmd.OutOrStdout(), cfg.AWS.CacheDir)
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func clearCache(w io.Writer, dir string) error {
	if dir == "" {
		return fmt.Errorf("no cache directory configured (aws.cache_dir)")
	}
	if err := awspkg.NewFileCache(dir, 0).Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintf(w, "Cleared %s\n", dir)
	return nil
}
