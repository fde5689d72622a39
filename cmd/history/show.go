package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/metrics"
	"github.com/albapepper/fantasy-history/internal/site"
)

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print computed metrics as tables",
	}
	views := []struct {
		use, short string
		render     func(io.Writer, *site.Data)
	}{
		{"champions", "Champions and runner-ups by season", renderChampions},
		{"all-time", "All-time standings", renderAllTime},
		{"records", "League records", renderRecords},
	}
	for _, v := range views {
		v := v
		cmd.AddCommand(&cobra.Command{
			Use:   v.use,
			Short: v.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStage(func(ctx context.Context, cfg *config.Config) error {
					data, err := site.LoadData(cfg.SiteDataDir)
					if err != nil {
						return err
					}
					v.render(cmd.OutOrStdout(), data)
					return nil
				})
			},
		})
	}
	return cmd
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func pts(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func renderChampions(w io.Writer, d *site.Data) {
	runnerUps := make(map[int]metrics.Finish, len(d.RunnerUps))
	for _, r := range d.RunnerUps {
		runnerUps[r.Season] = r
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Season", "Champion", "Manager", "Runner-up"})
	for _, c := range d.Champions {
		t.AppendRow(table.Row{c.Season, c.TeamName, c.Manager, runnerUps[c.Season].TeamName})
	}
	t.Render()
}

func renderAllTime(w io.Writer, d *site.Data) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Team", "Manager", "Seasons", "W", "L", "T", "Win %", "PF", "PA", "Titles"})
	for _, a := range d.AllTime {
		t.AppendRow(table.Row{
			a.TeamName, a.Manager, a.Seasons, a.Wins, a.Losses, a.Ties,
			pts(a.WinPct), pts(a.PF), pts(a.PA), a.Titles,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	t.Render()
}

func renderRecords(w io.Writer, d *site.Data) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Record", "Value", "Team", "When"})
	r := d.Records
	if h := r.SingleWeekHigh; h != nil {
		t.AppendRow(table.Row{"Single-week high", pts(h.Points), h.TeamName, fmt.Sprintf("%d wk %d vs %s", h.Season, h.Week, h.OppName)})
	}
	if m := r.SingleWeekMargin; m != nil {
		t.AppendRow(table.Row{"Largest margin", pts(m.Margin), m.TeamName, fmt.Sprintf("%d wk %d vs %s", m.Season, m.Week, m.OppName)})
	}
	if s := r.LongestWinStreak; s != nil {
		t.AppendRow(table.Row{"Longest win streak", s.Length, s.TeamName,
			fmt.Sprintf("%d wk %d to %d wk %d", s.StartSeason, s.StartWeek, s.Season, s.Week)})
	}
	t.Render()
}
