package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moviops/movi"
	"github.com/moviops/movi/internal/presentation/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant interactively",
	Long:  `Starts a terminal conversation with the movi agent. One session spans the whole conversation, so confirmations work across lines.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		owner, _ := cmd.Flags().GetString("owner")
		page, _ := cmd.Flags().GetString("page")

		app, err := movi.New(cmd.Context(), cfg)
		if err != nil {
			fmt.Printf("Error initializing movi: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		runner := movi.NewRunner()
		runner.Input = os.Stdin
		runner.Output = os.Stdout
		runner.Owner = owner
		runner.PageContext = page

		// Markdown rendering and the banner only make sense on a real
		// terminal; piped IO gets plain text.
		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(movi.Version)
			runner.Renderer = tui.NewRenderer()
		}

		if err := runner.Run(cmd.Context(), app.Pipeline()); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("owner", "", "Operator identifier attached to the session")
	chatCmd.Flags().String("page", "", "Screen context hint (e.g. trips, vehicles)")
}
