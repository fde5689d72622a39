package metrics

import (
	"path/filepath"
	"strconv"

	"github.com/albapepper/fantasy-history/internal/table"
)

var (
	finishColumns  = []string{"season", "team_name", "manager"}
	allTimeColumns = []string{
		"team_name", "manager", "seasons", "wins", "losses", "ties",
		"pf", "pa", "titles", "games", "win_pct",
	}
)

// writeCSV mirrors champions, runner-ups and all-time into dir for
// spreadsheet debugging.
func (r *Report) writeCSV(dir string) error {
	if err := table.WriteCSV(filepath.Join(dir, "champions.csv"), finishColumns, finishRecords(r.Champions)); err != nil {
		return err
	}
	if err := table.WriteCSV(filepath.Join(dir, "runnerups.csv"), finishColumns, finishRecords(r.RunnerUps)); err != nil {
		return err
	}
	records := make([][]string, 0, len(r.AllTime))
	for _, a := range r.AllTime {
		records = append(records, []string{
			a.TeamName, a.Manager,
			strconv.Itoa(a.Seasons), strconv.Itoa(a.Wins), strconv.Itoa(a.Losses), strconv.Itoa(a.Ties),
			table.FormatFloat(a.PF), table.FormatFloat(a.PA),
			strconv.Itoa(a.Titles), strconv.Itoa(a.Games),
			table.FormatFloat(a.WinPct),
		})
	}
	return table.WriteCSV(filepath.Join(dir, "all_time.csv"), allTimeColumns, records)
}

func finishRecords(rows []Finish) [][]string {
	records := make([][]string, 0, len(rows))
	for _, f := range rows {
		records = append(records, []string{strconv.Itoa(f.Season), f.TeamName, f.Manager})
	}
	return records
}
