package db

import (
	"context"
	"creditcounter/internal/catalog"
	"creditcounter/internal/syllabus"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("scrape run not found")

// Store keeps the history of scrape runs and the subjects each run produced.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type Run struct {
	Year       string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []catalog.DepartmentResult
}

// SaveRun stores a run with all of its department results in one transaction and returns
// the id assigned to it.
func (s Store) SaveRun(ctx context.Context, run Run) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO scrape_runs (id, year, started_at, finished_at) VALUES (?, ?, ?, ?)`,
		id, run.Year, run.StartedAt.Unix(), run.FinishedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, result := range run.Results {
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO department_results (run_id, department, fetched_at, record_count, error)
			VALUES (?, ?, ?, ?, ?)`,
			id, result.Department.Letter, result.FetchedAt.Unix(), len(result.Records), errText,
		)
		if err != nil {
			return "", fmt.Errorf("insert department result %s: %w", result.Department.Letter, err)
		}

		for i, r := range result.Records {
			_, err = tx.ExecContext(
				ctx,
				`INSERT INTO subjects (
					run_id, department, position, id, name, grade,
					category, category_text, requirement, requirement_text, credit_units
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, result.Department.Letter, i, r.ID, r.Name, r.Grade,
				int64(r.Category), r.CategoryText, int64(r.Requirement), r.RequirementText, r.CreditUnits,
			)
			if err != nil {
				return "", fmt.Errorf("insert subject %s: %w", r.ID, err)
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", err
	}
	return id, nil
}

type DepartmentSummary struct {
	Department string
	Records    int
	Error      string
}

type RunSummary struct {
	ID          string
	Year        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Departments []DepartmentSummary
}

// Failed is the number of departments that ended with an error.
func (r RunSummary) Failed() int {
	n := 0
	for _, d := range r.Departments {
		if d.Error != "" {
			n++
		}
	}
	return n
}

// Runs returns the latest runs, newest first.
func (s Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, year, started_at, finished_at FROM scrape_runs
		ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var startedAt, finishedAt int64
		err = rows.Scan(&run.ID, &run.Year, &startedAt, &finishedAt)
		if err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0)
		run.FinishedAt = time.Unix(finishedAt, 0)
		runs = append(runs, run)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	// the rows have to be closed before the next query when there is a single connection
	rows.Close()

	for i := range runs {
		runs[i].Departments, err = s.departments(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s Store) departments(ctx context.Context, runID string) ([]DepartmentSummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT department, record_count, error FROM department_results
		WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DepartmentSummary
	for rows.Next() {
		var d DepartmentSummary
		err = rows.Scan(&d.Department, &d.Records, &d.Error)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestRunID returns the newest run of a year.
func (s Store) LatestRunID(ctx context.Context, year string) (string, error) {
	var id string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id FROM scrape_runs WHERE year = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		year,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: year %s", ErrRunNotFound, year)
	}
	return id, err
}

// Subjects returns the subjects a run stored for a department, in page order.
func (s Store) Subjects(ctx context.Context, runID, department string) ([]syllabus.SubjectRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, grade, category, category_text, requirement, requirement_text, credit_units
		FROM subjects WHERE run_id = ? AND department = ? ORDER BY position`,
		runID, department,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []syllabus.SubjectRecord
	for rows.Next() {
		var r syllabus.SubjectRecord
		var category, requirement int64
		err = rows.Scan(
			&r.ID, &r.Name, &r.Grade,
			&category, &r.CategoryText,
			&requirement, &r.RequirementText,
			&r.CreditUnits,
		)
		if err != nil {
			return nil, err
		}
		r.Category = syllabus.Category(category)
		r.Requirement = syllabus.Requirement(requirement)
		out = append(out, r)
	}
	return out, rows.Err()
}
