package db

import (
	"context"
	"creditcounter/internal/catalog"
	"creditcounter/internal/syllabus"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	database, err := OpenDB(Config{File: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

var storeRecords = []syllabus.SubjectRecord{
	{
		ID:              "J-2025-0",
		Name:            "Calc I",
		Grade:           1,
		Category:        syllabus.CATEGORY_GENERAL,
		CategoryText:    "一般",
		Requirement:     syllabus.REQUIREMENT_REQUIRED,
		RequirementText: "必修",
		CreditUnits:     "2",
	},
	{
		ID:              "J-2025-1",
		Name:            "Calc II",
		Grade:           2,
		Category:        syllabus.CATEGORY_SPECIALIZED,
		CategoryText:    "専門",
		Requirement:     syllabus.REQUIREMENT_ELECTIVE,
		RequirementText: "選択",
		CreditUnits:     "1",
	},
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.LatestRunID(ctx, "2025")
	require.True(t, errors.Is(err, ErrRunNotFound))

	start := time.Unix(1_750_000_000, 0)
	firstID, err := store.SaveRun(ctx, Run{
		Year:       "2025",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Results: []catalog.DepartmentResult{
			{Department: syllabus.DefaultDepartments[3], Year: "2025", Records: storeRecords, FetchedAt: start},
			{Department: syllabus.DefaultDepartments[0], Year: "2025", FetchedAt: start, Err: errors.New("status 503")},
		},
	})
	require.NoError(t, err)

	secondID, err := store.SaveRun(ctx, Run{
		Year:       "2025",
		StartedAt:  start.Add(time.Hour),
		FinishedAt: start.Add(time.Hour + time.Minute),
		Results: []catalog.DepartmentResult{
			{Department: syllabus.DefaultDepartments[3], Year: "2025", Records: storeRecords[:1], FetchedAt: start},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, firstID, secondID)

	runs, err := store.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, secondID, runs[0].ID)
	require.Equal(t, firstID, runs[1].ID)
	require.Equal(t, start.Unix(), runs[1].StartedAt.Unix())
	require.Equal(t, []DepartmentSummary{
		{Department: "J", Records: 2},
		{Department: "M", Records: 0, Error: "status 503"},
	}, runs[1].Departments)
	require.Equal(t, 1, runs[1].Failed())
	require.Equal(t, 0, runs[0].Failed())

	latest, err := store.LatestRunID(ctx, "2025")
	require.NoError(t, err)
	require.Equal(t, secondID, latest)

	subjects, err := store.Subjects(ctx, firstID, "J")
	require.NoError(t, err)
	if diff := cmp.Diff(storeRecords, subjects); diff != "" {
		t.Fatal(diff)
	}

	subjects, err = store.Subjects(ctx, firstID, "M")
	require.NoError(t, err)
	require.Empty(t, subjects)

	runs, err = store.Runs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestOpenDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	database, err := OpenDB(Config{File: path})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	// reopening an existing database keeps the schema idempotent
	database, err = OpenDB(Config{File: path})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	_, err = OpenDB(Config{})
	require.Error(t, err)
}
