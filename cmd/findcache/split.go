package main

import (
	"github.com/spf13/cobra"

	"github.com/pario-ai/findcache/pkg/merge"
)

func newSplitCmd(configPath *string) *cobra.Command {
	var source string
	var size, overlap int

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split an oversized input into overlapping chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			text, err := readInput(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				size = a.cfg.Merge.ChunkSize
			}
			if !cmd.Flags().Changed("overlap") {
				overlap = a.cfg.Merge.ChunkOverlap
			}
			return writeJSON(cmd.OutOrStdout(), merge.Split(string(text), size, overlap))
		},
	}
	cmd.Flags().StringVarP(&source, "file", "f", "-", "input file, - for stdin")
	cmd.Flags().IntVar(&size, "size", merge.DefaultChunkSize, "chunk size in characters")
	cmd.Flags().IntVar(&overlap, "overlap", merge.DefaultChunkOverlap, "characters shared by consecutive chunks")
	return cmd
}
