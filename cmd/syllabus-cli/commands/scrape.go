package commands

import (
	"context"
	"creditcounter/internal/catalog"
	"creditcounter/internal/db"
	"creditcounter/internal/export"
	"creditcounter/internal/publish"
	"creditcounter/internal/syllabus"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeDepartments *[]string
	scrapeFormats     *[]string
	scrapeNormalize   *bool
	scrapeNoHistory   *bool
	scrapeNoPublish   *bool
)

func init() {
	scrapeDepartments = scrapeCmd.Flags().StringSliceP("departments", "d", nil, "Department letters or ids to scrape, every configured department by default.")
	scrapeFormats = scrapeCmd.Flags().StringSliceP("format", "f", nil, "Output formats (csv, xlsx), overrides the config.")
	scrapeNormalize = scrapeCmd.Flags().Bool("normalize", false, "Drop repeated subjects and apply the international student override before writing.")
	scrapeNoHistory = scrapeCmd.Flags().Bool("no-history", false, "Do not record the run in the history database.")
	scrapeNoPublish = scrapeCmd.Flags().Bool("no-publish", false, "Do not upload the written files even when a bucket is configured.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [year] [output-dir]",
	Short: "Scrapes every department of a year and writes one catalog file per department.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		year := ""
		if len(args) > 0 {
			year = args[0]
		}
		year, err := syllabus.NormalizeYear(year, cfg.DefaultYear)
		if err != nil {
			return err
		}
		outputDir := cfg.OutputDir
		if len(args) > 1 {
			outputDir = args[1]
		}
		formats := cfg.Formats
		if len(*scrapeFormats) > 0 {
			formats = *scrapeFormats
		}

		departments, err := selectDepartments(*scrapeDepartments)
		if err != nil {
			return err
		}
		runner, err := newRunner()
		if err != nil {
			return err
		}

		slog.Info("scraping", "year", year, "departments", len(departments), "output", outputDir)
		startedAt := clock.Now()
		results, runErr := runner.Run(cmd.Context(), departments, year)
		finishedAt := clock.Now()

		files, err := writeOutputs(outputDir, year, results, formats, *scrapeNormalize || cfg.Normalize)
		for _, f := range files {
			slog.Info("wrote catalog", "file", f)
		}
		if err != nil {
			return err
		}
		printResults(results)

		var publishErr error
		if cfg.Publish.Enabled() && !*scrapeNoPublish && len(files) > 0 {
			publishErr = publishFiles(cmd.Context(), files)
		}

		if !*scrapeNoHistory {
			err = saveHistory(cmd.Context(), db.Run{
				Year:       year,
				StartedAt:  startedAt,
				FinishedAt: finishedAt,
				Results:    results,
			})
			if err != nil {
				slog.Warn("failed to record scrape history", "err", err)
			}
		}

		slog.Info("scraping time", "seconds", finishedAt.Sub(startedAt).Seconds())
		if runErr != nil {
			runErr = fmt.Errorf("scrape finished with errors: %w", runErr)
		}
		return errors.Join(runErr, publishErr)
	},
}

// selectDepartments resolves department codes against the config, no codes selects all.
func selectDepartments(codes []string) ([]syllabus.Department, error) {
	if len(codes) == 0 {
		return cfg.Departments, nil
	}
	lookup := syllabus.Departments(cfg.Departments)
	out := make([]syllabus.Department, 0, len(codes))
	for _, code := range codes {
		dept, err := lookup.Lookup(code)
		if err != nil {
			return nil, err
		}
		if slices.Contains(out, dept) {
			continue
		}
		out = append(out, dept)
	}
	return out, nil
}

// writeOutputs writes the successful departments and returns the files it wrote.
func writeOutputs(dir, year string, results []catalog.DepartmentResult, formats []string, normalize bool) ([]string, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return nil, err
	}

	var files []string
	var sheets []export.Sheet
	var errs []error
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		records := result.Records
		if normalize {
			records = catalog.Normalize(records)
		}
		sheets = append(sheets, export.Sheet{Name: result.Department.Letter, Records: records})

		if !slices.Contains(formats, FORMAT_CSV) {
			continue
		}
		path := filepath.Join(dir, export.CSVFileName(result.Department.Letter, year))
		err := writeFile(path, func(f *os.File) error {
			return export.WriteCSV(f, records)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, path)
	}

	if slices.Contains(formats, FORMAT_XLSX) && len(sheets) > 0 {
		path := filepath.Join(dir, export.XLSXFileName(year))
		err := writeFile(path, func(f *os.File) error {
			return export.WriteXLSX(f, sheets)
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			files = append(files, path)
		}
	}

	return files, errors.Join(errs...)
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printResults(results []catalog.DepartmentResult) {
	t := newTable()
	t.AppendHeader(table.Row{"Department", "Name", "Subjects", "Error"})
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		t.AppendRow(table.Row{r.Department.Letter, r.Department.Name, len(r.Records), errText})
	}
	t.Render()
}

func publishFiles(ctx context.Context, files []string) error {
	bucket, err := publish.OpenB2FromEnv(ctx, cfg.Publish)
	if err != nil {
		return err
	}
	urls, err := publish.Files(ctx, bucket, cfg.Publish.Prefix, files)
	for _, url := range urls {
		slog.Info("published catalog", "url", url)
	}
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func saveHistory(ctx context.Context, run db.Run) error {
	database, err := db.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	id, err := db.NewStore(database).SaveRun(ctx, run)
	if err != nil {
		return err
	}
	slog.Info("recorded scrape run", "id", id)
	return nil
}
