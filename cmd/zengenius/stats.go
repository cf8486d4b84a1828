package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/goodtune/zengenius/internal/config"
	"github.com/goodtune/zengenius/internal/study"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats USER_ID",
	Short:   "Print dashboard statistics for a user",
	Long:    `Compute the dashboard for a user directly from storage and print it as JSON.`,
	Example: `  zengenius -c config.yaml stats user-123`,
	Args:    cobra.ExactArgs(1),
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	service := study.NewService(store.Sessions(), study.Options{
		Location:      analyticsLocation(cfg.Analytics),
		SessionLength: config.ParseDuration(cfg.Analytics.SessionLength, 30*time.Minute),
		Logger:        zerolog.Nop(),
	})

	dash, err := service.Dashboard(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(dash)
}
