package commands

import (
	"creditcounter/internal/catalog"
	"creditcounter/internal/syllabus"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchThreshold   *float64
	searchDepartments *[]string
)

func init() {
	searchThreshold = searchCmd.Flags().Float64P("threshold", "t", catalog.DefaultSearchThreshold, "The similarity above which a subject name counts as a match.")
	searchDepartments = searchCmd.Flags().StringSliceP("departments", "d", nil, "Department letters or ids to search, every configured department by default.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query> [year]",
	Short: "Finds subjects by name across departments.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		year := ""
		if len(args) > 1 {
			year = args[1]
		}
		year, err := syllabus.NormalizeYear(year, cfg.DefaultYear)
		if err != nil {
			return err
		}
		departments, err := selectDepartments(*searchDepartments)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Department", "ID", "Name", "Grade", "Credits", "Score"})
		matches := 0
		for _, dept := range departments {
			records, err := loadRecords(cmd.Context(), dept, year)
			if err != nil {
				slog.Warn("skipping department", "department", dept.Letter, "err", err)
				continue
			}
			for _, result := range catalog.Search(records, args[0], *searchThreshold) {
				r := result.Record
				t.AppendRow(table.Row{dept.Letter, r.ID, r.Name, r.Grade, r.CreditUnits, fmt.Sprintf("%.2f", result.Score)})
				matches++
			}
		}
		if matches == 0 {
			fmt.Printf("no subjects match %q\n", args[0])
			return nil
		}
		t.Render()
		return nil
	},
}
