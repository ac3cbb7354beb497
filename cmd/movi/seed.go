package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/moviops/movi/internal/fleet"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo fleet into the database",
	Long:  `Creates the fleet schema and loads a small demo fleet (paths, routes, trips, vehicles, drivers). Safe to run more than once.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		if dir := filepath.Dir(cfg.Fleet.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Printf("Error creating data directory: %v\n", err)
				os.Exit(1)
			}
		}

		store, err := fleet.Open(cfg.Fleet.DatabasePath)
		if err != nil {
			fmt.Printf("Error opening fleet database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.Seed(cmd.Context()); err != nil {
			fmt.Printf("Error seeding fleet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Demo fleet loaded into %s\n", cfg.Fleet.DatabasePath)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
