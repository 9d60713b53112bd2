package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pario-ai/findcache/pkg/models"
)

func newInsertCmd(configPath *string) *cobra.Command {
	var category, payloadPath, source string

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Cache a fresh finding for a source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.ParseCategory(category)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), payloadPath)
			if err != nil {
				return err
			}
			payload, err := models.DecodePayload(cat, raw)
			if err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
			var text []byte
			if source != "" {
				if text, err = readInput(cmd.InOrStdin(), source); err != nil {
					return err
				}
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

			id, err := e.Insert(cmd.Context(), cat, payload, string(text))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "defect, vulnerability, recommendation or requirement")
	cmd.Flags().StringVarP(&payloadPath, "payload", "p", "-", "JSON finding, - for stdin")
	cmd.Flags().StringVarP(&source, "file", "f", "", "source file the finding was produced from")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
