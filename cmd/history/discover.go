package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/table"
	"github.com/albapepper/fantasy-history/internal/yahoo"
)

// leagueKeys is the league_keys.json document.
type leagueKeys struct {
	LeagueID   string   `json:"league_id"`
	LeagueKeys []string `json:"league_keys"`
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Find every season's league key for YAHOO_LEAGUE_ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				if _, err := strconv.Atoi(cfg.LeagueID); err != nil {
					return fmt.Errorf("YAHOO_LEAGUE_ID must be numeric, got %q", cfg.LeagueID)
				}
				client, err := newClient(cfg)
				if err != nil {
					return err
				}

				leagues, err := client.UserLeagues(ctx, cfg.GameCode)
				if err != nil {
					return fmt.Errorf("list leagues: %w", err)
				}
				start, ok := yahoo.FindLeagueKey(leagues, cfg.LeagueID)
				if !ok {
					return fmt.Errorf("league %s not found in your %s leagues", cfg.LeagueID, cfg.GameCode)
				}

				keys, err := yahoo.DiscoverKeys(ctx, client, start)
				if err != nil {
					return err
				}
				out := filepath.Join(cfg.Paths().RawDir, config.LeagueKeysFile)
				if err := table.WriteJSON(out, leagueKeys{LeagueID: cfg.LeagueID, LeagueKeys: keys}); err != nil {
					return err
				}
				logger.Info("League keys written", "file", out, "count", len(keys), "newest", start)
				return nil
			})
		},
	}
}
