package yahoo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/albapepper/fantasy-history/internal/provider"
	"github.com/albapepper/fantasy-history/internal/snapshot"
)

// PullerConfig is the process-wide configuration of a pull.
type PullerConfig struct {
	LeagueKey    string        // newest season's league key; older seasons come from the renew chain
	RequestDelay time.Duration // applied by the client between requests
	RawDir       string        // data/raw
}

// LeagueAPI is the set of endpoints a season pull reads.
type LeagueAPI interface {
	MetadataFetcher
	Settings(ctx context.Context, leagueKey string) (map[string]interface{}, error)
	Standings(ctx context.Context, leagueKey string) ([]interface{}, error)
	Scoreboard(ctx context.Context, leagueKey string, week int) ([]interface{}, error)
	DraftResults(ctx context.Context, leagueKey string) ([]interface{}, error)
	Teams(ctx context.Context, leagueKey string) ([]interface{}, error)
	Roster(ctx context.Context, teamKey string) (map[string]interface{}, error)
	Transactions(ctx context.Context, leagueKey string) ([]interface{}, error)
}

// PullResult tracks counts and errors from a pull.
type PullResult struct {
	LeagueKeys      []string
	SeasonsPulled   []string
	WeeksPulled     int
	RostersPulled   int
	OptionalMissing int
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *PullResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the pull.
func (r *PullResult) Summary() string {
	return fmt.Sprintf("keys=%d seasons=%d weeks=%d rosters=%d optional_missing=%d errors=%d",
		len(r.LeagueKeys), len(r.SeasonsPulled), r.WeeksPulled,
		r.RostersPulled, r.OptionalMissing, len(r.Errors))
}

// Puller snapshots every season of a league to disk.
type Puller struct {
	api    LeagueAPI
	store  *snapshot.Store
	cfg    PullerConfig
	logger *slog.Logger
}

// NewPuller wires a puller. The client passed in must already apply
// cfg.RequestDelay between requests.
func NewPuller(api LeagueAPI, cfg PullerConfig, logger *slog.Logger) *Puller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Puller{api: api, store: snapshot.New(cfg.RawDir), cfg: cfg, logger: logger}
}

// Run walks the renew chain and pulls every season. A failure in one season
// is recorded and the next season is tried; credential and authorization
// failures abort the run. The returned error is non-nil when any season
// failed.
func (p *Puller) Run(ctx context.Context) (*PullResult, error) {
	result := &PullResult{}

	keys, err := DiscoverKeys(ctx, p.api, p.cfg.LeagueKey)
	result.LeagueKeys = keys
	if err != nil {
		return result, fmt.Errorf("discover league keys: %w", err)
	}
	p.logger.Info("Found seasons", "count", len(keys), "keys", keys)

	for _, key := range keys {
		season, err := p.PullSeason(ctx, key, result)
		if err != nil {
			if isFatal(err) {
				return result, fmt.Errorf("pull %s: %w", key, err)
			}
			p.logger.Error("Season pull failed", "league_key", key, "error", err)
			result.AddErrorf("%s: %v", key, err)
			continue
		}
		result.SeasonsPulled = append(result.SeasonsPulled, season)
	}

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("%d of %d seasons failed", len(result.Errors), len(keys))
	}
	return result, nil
}

// PullSeason pulls the six documents of one league key and commits them as
// the season's directory. It returns the season id.
func (p *Puller) PullSeason(ctx context.Context, leagueKey string, result *PullResult) (string, error) {
	settings, err := p.api.Settings(ctx, leagueKey)
	if err != nil {
		return "", fmt.Errorf("settings: %w", err)
	}
	season, ok := provider.ExtractString(settings["season"])
	if !ok {
		return "", fmt.Errorf("settings: no season")
	}
	endWeek, ok := provider.ExtractInt(provider.First(settings,
		[]string{"end_week"}, []string{"settings", "end_week"}))
	if !ok || endWeek < 1 {
		return "", fmt.Errorf("settings: no end_week")
	}

	w, err := p.store.Begin(season)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			w.Abort()
		}
	}()

	// 1) Settings / metadata
	if err := w.Write(snapshot.Settings, settings); err != nil {
		return "", err
	}

	// 2) Standings
	standings, err := p.api.Standings(ctx, leagueKey)
	if err != nil {
		return "", fmt.Errorf("standings: %w", err)
	}
	if err := w.Write(snapshot.Standings, standings); err != nil {
		return "", err
	}

	// 3) Matchups, keyed by week number
	matchups := make(map[string]interface{}, endWeek)
	for wk := 1; wk <= endWeek; wk++ {
		games, err := p.api.Scoreboard(ctx, leagueKey, wk)
		if err != nil {
			return "", fmt.Errorf("scoreboard week %d: %w", wk, err)
		}
		matchups[strconv.Itoa(wk)] = games
		result.WeeksPulled++
	}
	if err := w.Write(snapshot.Matchups, matchups); err != nil {
		return "", err
	}

	// 4) Draft results (optional)
	if draft, err := p.api.DraftResults(ctx, leagueKey); err != nil {
		p.optionalMissing(season, snapshot.Draft, err, result)
	} else if err := w.Write(snapshot.Draft, draft); err != nil {
		return "", err
	}

	// 5) Rosters, per team; a failed roster is recorded in place
	teams, err := p.api.Teams(ctx, leagueKey)
	if err != nil {
		return "", fmt.Errorf("teams: %w", err)
	}
	rosters := make(map[string]interface{}, len(teams))
	for _, t := range teams {
		teamKey, _ := provider.ExtractString(provider.Path(t, "team_key"))
		if teamKey == "" {
			continue
		}
		roster, err := p.api.Roster(ctx, teamKey)
		if err != nil {
			if isFatal(err) {
				return "", fmt.Errorf("roster %s: %w", teamKey, err)
			}
			p.logger.Warn("Roster unavailable", "season", season, "team_key", teamKey, "error", err)
			rosters[teamKey] = map[string]interface{}{"error": err.Error()}
			continue
		}
		rosters[teamKey] = roster
		result.RostersPulled++
	}
	if err := w.Write(snapshot.Rosters, rosters); err != nil {
		return "", err
	}

	// 6) Transactions (optional)
	if tx, err := p.api.Transactions(ctx, leagueKey); err != nil {
		p.optionalMissing(season, snapshot.Transactions, err, result)
	} else if err := w.Write(snapshot.Transactions, tx); err != nil {
		return "", err
	}

	if err := w.Commit(); err != nil {
		return "", err
	}
	committed = true
	p.logger.Info("Season pulled", "season", season, "league_key", leagueKey,
		"weeks", endWeek, "teams", len(teams), "dir", p.store.SeasonDir(season))
	return season, nil
}

func (p *Puller) optionalMissing(season string, doc snapshot.Document, err error, result *PullResult) {
	p.logger.Warn("Optional document absent", "season", season, "document", doc, "error", err)
	result.OptionalMissing++
}

// isFatal reports errors that will fail every later request too.
func isFatal(err error) bool {
	if errors.Is(err, ErrMissingCredentials) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuth()
}
