package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/prismhq/prism/internal/config"
)

func main() {
	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	if os.Getenv("PRISM_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:   "prism",
		Short: "Prism is a terminal dashboard for AI provider usage and spend.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDashboard(cfg)
		},
	}

	root.AddCommand(newServeCommand(cfg))
	root.AddCommand(newConnectCommand(cfg))
	root.AddCommand(newDisconnectCommand(cfg))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
