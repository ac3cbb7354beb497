package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moviops/movi/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "movi",
	Short: "Movi is a conversational operations assistant for transit fleets",
	Long: `Movi turns free-form operator input into fleet operations: querying trips,
assigning vehicles, creating stops and paths, and removing deployments,
with destructive actions gated behind explicit confirmation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "movi.yaml", "Path to the configuration file")
}

func loadConfig(cmd *cobra.Command) *config.Config {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
