package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/janisto/codestats/internal/http/v1/stats"
	"github.com/janisto/codestats/internal/service/codingstats"
)

var syncCmd = &cobra.Command{
	Use:   "sync <user-id>",
	Short: "Synchronize one user's external profiles and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return runSync(cmd, a.stats, args[0])
	},
}

func runSync(cmd *cobra.Command, svc codingstats.Service, userID string) error {
	profile, err := svc.SyncUserStats(cmd.Context(), userID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats.ProfileBody(profile))
}
