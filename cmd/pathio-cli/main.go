// Package main provides the Pathio Guide CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/triptech-ai/pathio-guide/internal/config"
	"github.com/triptech-ai/pathio-guide/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "pathio-cli",
	Short: "Pathio Guide CLI for chatting with the place finder and seeding data",
	Long: `Pathio Guide CLI talks to the conversational place finder for the
Pathio district of Chumphon province.

Use this tool to:
- Chat with the guide from a terminal session
- Seed the place store from a JSON dataset
- Inspect what the retrieval pipeline returns for a single query`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env beside the binary is a convenience for development.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "pathio-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
