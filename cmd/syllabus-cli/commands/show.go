package commands

import (
	"context"
	"creditcounter/internal/catalog"
	"creditcounter/internal/db"
	"creditcounter/internal/export"
	"creditcounter/internal/syllabus"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	showLimit   *int
	showSummary *bool
	showHistory *bool
)

func init() {
	showLimit = showCmd.Flags().IntP("limit", "l", 10, "The maximum number of subjects to print, 0 prints all of them.")
	showSummary = showCmd.Flags().BoolP("summary", "s", false, "Print credit totals per grade.")
	showHistory = showCmd.Flags().Bool("history", false, "Read the subjects of the latest recorded run instead of the site.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <department> [year]",
	Short: "Prints the subjects of a department.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dept, err := syllabus.Departments(cfg.Departments).Lookup(args[0])
		if err != nil {
			return err
		}
		year := ""
		if len(args) > 1 {
			year = args[1]
		}
		year, err = syllabus.NormalizeYear(year, cfg.DefaultYear)
		if err != nil {
			return err
		}

		var records []syllabus.SubjectRecord
		if *showHistory {
			records, err = loadHistoryRecords(cmd.Context(), dept, year)
		} else {
			records, err = loadRecords(cmd.Context(), dept, year)
		}
		if err != nil {
			return err
		}
		if cfg.Normalize {
			records = catalog.Normalize(records)
		}

		printRecords(records, *showLimit)
		if *showSummary {
			printSummary(catalog.Summary(records))
		}
		return nil
	},
}

// loadRecords reads {output_dir}/{letter}_{year}.csv when a previous scrape wrote it,
// otherwise the department is fetched from the site.
func loadRecords(ctx context.Context, dept syllabus.Department, year string) ([]syllabus.SubjectRecord, error) {
	path := filepath.Join(cfg.OutputDir, export.CSVFileName(dept.Letter, year))
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		slog.Debug("reading catalog file", "file", path)
		return export.ReadCSV(f, cfg.Tokens)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	runner, err := newRunner()
	if err != nil {
		return nil, err
	}
	result := runner.RunDepartment(ctx, dept, year)
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Records, nil
}

func loadHistoryRecords(ctx context.Context, dept syllabus.Department, year string) ([]syllabus.SubjectRecord, error) {
	database, err := db.OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	store := db.NewStore(database)
	runID, err := store.LatestRunID(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("no recorded run for %s: %w", year, err)
	}
	return store.Subjects(ctx, runID, dept.Letter)
}

func printRecords(records []syllabus.SubjectRecord, limit int) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Grade", "Category", "Requirement", "Credits"})
	for i, r := range records {
		if limit > 0 && i >= limit {
			break
		}
		t.AppendRow(table.Row{r.ID, r.Name, r.Grade, r.CategoryText, r.RequirementText, r.CreditUnits})
	}
	if limit > 0 && len(records) > limit {
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d more", len(records)-limit)})
	}
	t.Render()
}

func printSummary(summary []catalog.GradeSummary) {
	t := newTable()
	t.AppendHeader(table.Row{"Grade", "Subjects", "General", "Specialized", "Required", "Elective", "Total"})
	var total catalog.GradeSummary
	for _, s := range summary {
		t.AppendRow(table.Row{s.Grade, s.Subjects, s.General, s.Specialized, s.Required, s.Elective, s.Total})
		total.Subjects += s.Subjects
		total.General += s.General
		total.Specialized += s.Specialized
		total.Required += s.Required
		total.Elective += s.Elective
		total.Total += s.Total
	}
	t.AppendFooter(table.Row{"", total.Subjects, total.General, total.Specialized, total.Required, total.Elective, total.Total})
	t.Render()
}
