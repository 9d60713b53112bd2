package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pario-ai/findcache/pkg/cache"
	"github.com/pario-ai/findcache/pkg/models"
)

func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the findings cache",
	}

	var output string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()
			e, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			stats := e.Statistics()
			out := cmd.OutOrStdout()
			switch output {
			case "json":
				return writeJSON(out, stats)
			case "yaml":
				return yaml.NewEncoder(out).Encode(stats)
			case "text":
				return formatCacheStats(out, stats)
			}
			return fmt.Errorf("unknown output format %q", output)
		},
	}
	statsCmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()
			e, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All cache entries cleared.")
			return nil
		},
	}

	evictCmd := &cobra.Command{
		Use:   "evict",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()
			// Expiry at open is disabled so the pass below sees and counts
			// every expired entry.
			e, err := a.openEngine(cmd.Context(), cache.WithTTL(0))
			if err != nil {
				return err
			}
			defer e.Close()

			n := e.EvictExpired(cmd.Context(), a.cfg.Cache.TTL)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired cache entries. Remaining: %d\n", n, total(e.Statistics()))
			return nil
		},
	}

	cmd.AddCommand(statsCmd, clearCmd, evictCmd)
	return cmd
}

func total(s models.CacheStats) int {
	n := 0
	for _, c := range s.Entries {
		n += c
	}
	return n
}

func formatCacheStats(w io.Writer, stats models.CacheStats) error {
	_, err := fmt.Fprintf(w, "Cache Statistics\n"+
		"  Entries:  %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Saves:    %d\n"+
		"  Hit Rate: %.1f%%\n",
		total(stats), stats.Hits, stats.Misses, stats.Saves, stats.HitRate*100)
	if err != nil {
		return err
	}

	cats := make([]string, 0, len(stats.Entries))
	for c := range stats.Entries {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		if _, err := fmt.Fprintf(w, "  %-16s %d\n", c+":", stats.Entries[models.Category(c)]); err != nil {
			return err
		}
	}
	return nil
}
