package yahoo

import (
	"context"
	"fmt"
	"strings"
)

// RenewToKey converts the "renew"/"renewed" pointer Yahoo stores on a league
// ("390_123456") into a league key ("390.l.123456"). Empty input or an
// unrecognized format yields "".
func RenewToKey(renew string) string {
	renew = strings.TrimSpace(renew)
	if renew == "" {
		return ""
	}
	if strings.Contains(renew, ".l.") {
		return renew
	}
	game, league, ok := strings.Cut(renew, "_")
	if !ok || game == "" || league == "" {
		return ""
	}
	return game + ".l." + league
}

// MetadataFetcher is the part of Client the renew-chain walk needs.
type MetadataFetcher interface {
	LeagueMetadata(ctx context.Context, leagueKey string) (map[string]interface{}, error)
}

// DiscoverKeys follows the league's renew chain from start to the oldest
// season. Keys are returned newest → oldest; the walk stops at an empty
// pointer or a key already seen.
func DiscoverKeys(ctx context.Context, f MetadataFetcher, start string) ([]string, error) {
	var keys []string
	seen := make(map[string]bool)
	for key := start; key != "" && !seen[key]; {
		seen[key] = true
		meta, err := f.LeagueMetadata(ctx, key)
		if err != nil {
			return keys, fmt.Errorf("league metadata %s: %w", key, err)
		}
		keys = append(keys, key)
		renew, _ := meta["renew"].(string)
		key = RenewToKey(renew)
	}
	return keys, nil
}

// FindLeagueKey returns the league_key of the newest season whose league_id
// matches leagueID.
func FindLeagueKey(leagues []map[string]interface{}, leagueID string) (string, bool) {
	best, bestSeason := "", ""
	for _, lg := range leagues {
		id := fmt.Sprint(lg["league_id"])
		key, _ := lg["league_key"].(string)
		if id != leagueID || key == "" {
			continue
		}
		season := fmt.Sprint(lg["season"])
		if best == "" || season > bestSeason {
			best, bestSeason = key, season
		}
	}
	return best, best != ""
}
