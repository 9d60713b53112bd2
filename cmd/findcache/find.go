package main

import (
	"github.com/spf13/cobra"

	"github.com/pario-ai/findcache/pkg/models"
)

type findOutput struct {
	IDs      []string          `json:"ids"`
	Findings []models.Payload  `json:"findings"`
	Stats    models.CacheStats `json:"stats"`
}

func newFindCmd(configPath *string) *cobra.Command {
	var category, source string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Look up cached findings for a source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.ParseCategory(category)
			if err != nil {
				return err
			}
			text, err := readInput(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}

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

			payloads, ids, err := e.Find(cmd.Context(), cat, string(text))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), findOutput{
				IDs:      ids,
				Findings: payloads,
				Stats:    e.Statistics(),
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "defect, vulnerability, recommendation or requirement")
	cmd.Flags().StringVarP(&source, "file", "f", "-", "source file to look up, - for stdin")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
