package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moviops/movi/internal/fleet"
	"github.com/moviops/movi/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the fleet network as a Mermaid diagram",
	Long:  `Prints the configured paths, their ordered stops and attached routes as Mermaid flowchart syntax.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		store, err := fleet.Open(cfg.Fleet.DatabasePath)
		if err != nil {
			fmt.Printf("Error opening fleet database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		ctx := cmd.Context()
		paths, err := store.Paths(ctx)
		if err != nil {
			fmt.Printf("Error listing paths: %v\n", err)
			os.Exit(1)
		}

		views := make([]graph.PathView, 0, len(paths))
		for _, p := range paths {
			stops, err := store.StopsForPath(ctx, p.ID)
			if err != nil {
				fmt.Printf("Error loading stops for %q: %v\n", p.Name, err)
				os.Exit(1)
			}
			routes, err := store.RoutesForPath(ctx, p.ID)
			if err != nil {
				fmt.Printf("Error loading routes for %q: %v\n", p.Name, err)
				os.Exit(1)
			}
			views = append(views, graph.PathView{Path: p, Stops: stops, Routes: routes})
		}

		fmt.Print(graph.GenerateMermaid(views))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
