package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stocktracker",
		Short: "Look up live stock quotes by company name",
		Long: `stocktracker resolves company names to ticker symbols, scrapes the quote
page of each ticker and reports price, change and volume.

Example:
  stocktracker serve
  stocktracker quote "Apple, Microsoft, Tata Motors"`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "Path to a YAML or JSON config file")

	serve := serveCmd(&configPath)
	cmd.AddCommand(serve, quoteCmd(&configPath))
	// bare invocation keeps the old behaviour of starting the server
	cmd.RunE = serve.RunE

	return cmd
}
