package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/graphrag/internal/core/schema"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Validate and print the extraction schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := schema.LoadFile(cfg.Extraction.SchemaPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Schema %s (%s)\n", s.Version, cfg.Extraction.SchemaPath)
			fmt.Fprintf(os.Stdout, "%s\n\n", s.Description)
			fmt.Fprint(os.Stdout, s.PromptText())
			return nil
		},
	}
}
