package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/moviops/movi"
	"github.com/moviops/movi/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted conversation sessions",
	Long:  `List, inspect, and remove sessions from the configured session store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store, closeStore := getSessionStore(cmd)
		defer closeStore()

		sessions, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(sessions) == 0 {
			fmt.Println("No active sessions found.")
			return
		}

		fmt.Println("Active Sessions:")
		for _, s := range sessions {
			fmt.Println("- " + s)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		store, closeStore := getSessionStore(cmd)
		defer closeStore()

		sess, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, closeStore := getSessionStore(cmd)
		defer closeStore()
		hasError := false

		for _, sessionID := range args {
			if err := store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close <session-id>",
	Short: "Deactivate a session without deleting it",
	Long:  `Marks the session inactive so further turns are rejected. The record stays available for inspect until it expires.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		store, closeStore := getSessionStore(cmd)
		defer closeStore()

		sess, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}
		if !sess.Active {
			fmt.Printf("Session '%s' is already closed\n", sessionID)
			return
		}
		sess.Active = false
		sess.UpdatedAt = time.Now().UTC()
		if err := store.Save(cmd.Context(), sess); err != nil {
			fmt.Printf("Error closing session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}
		fmt.Printf("Closed session '%s'\n", sessionID)
	},
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove sessions idle past the configured TTL",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		store, closeStore := getSessionStore(cmd)
		defer closeStore()

		cutoff := time.Now().Add(-cfg.SessionTTL())
		n, err := store.PurgeExpired(cmd.Context(), cutoff)
		if err != nil {
			fmt.Printf("Error purging sessions: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Purged %d expired session(s)\n", n)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionCmd.AddCommand(sessionCloseCmd)
	sessionCmd.AddCommand(sessionPurgeCmd)
}

func getSessionStore(cmd *cobra.Command) (ports.SessionStore, func()) {
	cfg := loadConfig(cmd)
	if cfg.Sessions.Backend == "memory" {
		fmt.Println("Session commands need a persistent backend (file or redis); the memory store lives inside the server process.")
		os.Exit(1)
	}
	store, _, closeStore, err := movi.NewSessionStore(cfg)
	if err != nil {
		fmt.Printf("Error opening session store: %v\n", err)
		os.Exit(1)
	}
	return store, func() { _ = closeStore() }
}
