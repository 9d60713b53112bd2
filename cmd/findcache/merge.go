package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pario-ai/findcache/pkg/merge"
	"github.com/pario-ai/findcache/pkg/models"
)

func newMergeCmd(configPath *string) *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "merge <partial.json>...",
		Short: "Merge per-chunk analysis results into one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			opts := []merge.Option{
				merge.WithLogger(a.logger),
				merge.WithNarrativeFields(a.cfg.Merge.NarrativeFields...),
				merge.WithNarrativeNote(a.cfg.Merge.NarrativeNote),
			}
			switch schema {
			case "":
			case "requirements":
				opts = append(opts, merge.WithSchema(merge.SchemaOf[models.RequirementsAssessment]()))
			default:
				return fmt.Errorf("unknown schema %q", schema)
			}
			m := merge.New(opts...)

			partials := make([]models.PartialResult, 0, len(args))
			for _, path := range args {
				data, err := readInput(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				var pr models.PartialResult
				if err := json.Unmarshal(data, &pr); err != nil {
					return fmt.Errorf("parse %s: %w", path, err)
				}
				partials = append(partials, pr)
			}

			return writeJSON(cmd.OutOrStdout(), m.MergeOrFirst(partials))
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "declared result schema: requirements, or empty to infer")
	return cmd
}
