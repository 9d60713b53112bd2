package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "findcache",
		Short:         "Reuse analysis findings across unchanged code",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "findcache.yaml", "path to config file")

	root.AddCommand(
		newCacheCmd(&configPath),
		newFindCmd(&configPath),
		newInsertCmd(&configPath),
		newMergeCmd(&configPath),
		newSplitCmd(&configPath),
	)
	return root
}
