package commands

import (
	"creditcounter/internal/db"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "l", 20, "The number of runs to list.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recorded scrape runs, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.OpenDB(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := db.NewStore(database).Runs(cmd.Context(), *historyLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Year", "Started", "Duration", "Departments", "Failed"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.ID,
				run.Year,
				run.StartedAt.In(clock.Location()).Format(time.DateTime),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
				len(run.Departments),
				run.Failed(),
			})
		}
		t.Render()
		return nil
	},
}
