package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:          "graphrag",
		Short:        "Knowledge graph extraction and community-aware question answering",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to the TOML config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(serveCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(askCmd())
	root.AddCommand(communitiesCmd())
	root.AddCommand(schemaCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("GRAPHRAG_CONFIG"); p != "" {
		return p
	}
	return "config/config.toml"
}
