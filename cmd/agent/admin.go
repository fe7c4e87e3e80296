package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jeevan/internal/platform/config"
	"jeevan/internal/storage/sqlite"
)

// newStatusCmd prints the collection counts from the data file. It opens the
// store directly so it works while no agent is running.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print queue, history and vault counts from the data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.DataPath == "" {
				return fmt.Errorf("status requires JEEVAN_DATA_PATH")
			}
			store, err := sqlite.Open(cfg.DataPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			queued, err := store.Queue(ctx)
			if err != nil {
				return err
			}
			history, err := store.History(ctx)
			if err != nil {
				return err
			}
			records, err := store.Records(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("data file:       %s\n", cfg.DataPath)
			fmt.Printf("queued:          %d\n", len(queued))
			fmt.Printf("history entries: %d\n", len(history))
			fmt.Printf("vault records:   %d\n", len(records))
			return nil
		},
	}
}

// newResetCmd clears the offline queue and, with --history, the history log.
// The vault is append-only and is never cleared.
func newResetCmd() *cobra.Command {
	var clearHistory bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the offline queue (and optionally the history log)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.DataPath == "" {
				return fmt.Errorf("reset requires JEEVAN_DATA_PATH")
			}
			store, err := sqlite.Open(cfg.DataPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			if err := store.ClearQueue(ctx); err != nil {
				return err
			}
			fmt.Println("offline queue cleared")

			if clearHistory {
				if err := store.ClearHistory(ctx); err != nil {
					return err
				}
				fmt.Println("history log cleared")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearHistory, "history", false, "also clear the history log")
	return cmd
}
