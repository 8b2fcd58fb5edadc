package server

import (
	"context"
	"creditcounter/internal/cache"
	"creditcounter/internal/catalog"
	"creditcounter/internal/components/assert"
	"creditcounter/internal/components/chrono"
	"creditcounter/internal/components/telemetry"
	"creditcounter/internal/export"
	"creditcounter/internal/syllabus"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("internal/server")

const (
	report_server_subjects = "server.subjects"
	report_server_refresh  = "server.refresh"
)

const (
	SOURCE_LIVE = "live"
	SOURCE_CSV  = "csv"
)

type Subject struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Requirement    string `json:"requirement"`
	Credits        int    `json:"credits"`
	Grade          int    `json:"grade"`
}

type Meta struct {
	Department     string    `json:"department"`
	DepartmentName string    `json:"departmentName"`
	Year           string    `json:"year"`
	FetchedAt      time.Time `json:"fetchedAt"`
	Cached         bool      `json:"cached"`
	Source         string    `json:"source"`
}

type Payload struct {
	Subjects []Subject `json:"subjects"`
	Meta     Meta      `json:"meta"`
}

type Options struct {
	Departments syllabus.Departments
	DefaultYear string
	// CSVDir is searched for {letter}_{year}.csv before the live site is hit.
	CSVDir string
	Tokens syllabus.Tokens
}

// DepartmentRunner fetches and extracts a single department, catalog.Runner implements it.
type DepartmentRunner interface {
	RunDepartment(ctx context.Context, dept syllabus.Department, year string) catalog.DepartmentResult
}

// Server answers subject queries from the cache, then the csv directory, then the live site.
type Server struct {
	runner DepartmentRunner
	cache  *cache.TTL[Payload]
	clock  chrono.API
	opts   Options
	tel    telemetry.API
}

// NewServer creates a Server, runner can be nil to serve from the csv directory only.
func NewServer(runner DepartmentRunner, c *cache.TTL[Payload], clock chrono.API, opts Options, tel telemetry.API) Server {
	assert.NotNil(c)
	assert.NotNil(clock)
	assert.NotNil(tel)

	if len(opts.Departments) == 0 {
		opts.Departments = syllabus.DefaultDepartments
	}
	return Server{
		runner: runner,
		cache:  c,
		clock:  clock,
		opts:   opts,
		tel:    telemetry.NewScopedAPI("server", tel),
	}
}

// resolveDepartment treats an empty code as the first department.
func (s Server) resolveDepartment(code string) (syllabus.Department, error) {
	if code == "" {
		return s.opts.Departments[0], nil
	}
	return s.opts.Departments.Lookup(code)
}

func cacheKey(dept syllabus.Department, year string) string {
	return fmt.Sprintf("%s-%s", dept.ID, year)
}

// Subjects returns the normalized subjects of a department. Returned errors are *HttpError.
func (s Server) Subjects(ctx context.Context, departmentCode, year string) (Payload, error) {
	ctx, span := tracer.Start(ctx, "Subjects")
	defer span.End()

	dept, err := s.resolveDepartment(departmentCode)
	if err != nil {
		return Payload{}, toHttpError(err)
	}
	year, err = syllabus.NormalizeYear(year, s.opts.DefaultYear)
	if err != nil {
		return Payload{}, toHttpError(err)
	}
	span.SetAttributes(attribute.String("department", dept.Letter), attribute.String("year", year))

	payload, cached, err := s.cache.GetOrLoad(ctx, cacheKey(dept, year), func(ctx context.Context) (Payload, error) {
		return s.load(ctx, dept, year)
	})
	if err != nil {
		s.tel.ReportBroken(report_server_subjects, err, dept.Letter, year)
		return Payload{}, toHttpError(err)
	}
	payload.Meta.Cached = cached
	return payload, nil
}

func (s Server) load(ctx context.Context, dept syllabus.Department, year string) (Payload, error) {
	records, source, err := s.readCSV(dept, year)
	if err != nil {
		return Payload{}, err
	}
	if source == "" {
		if s.runner == nil {
			return Payload{}, &HttpError{Status: http.StatusBadGateway, Message: "failed to fetch syllabus page"}
		}
		result := s.runner.RunDepartment(ctx, dept, year)
		if result.Err != nil {
			return Payload{}, result.Err
		}
		records, source = result.Records, SOURCE_LIVE
	}

	records = catalog.Normalize(records)
	if len(records) == 0 {
		return Payload{}, &HttpError{Status: http.StatusBadGateway, Message: "failed to parse syllabus page"}
	}

	subjects := make([]Subject, len(records))
	for i, r := range records {
		credits, _ := r.Credits()
		subjects[i] = Subject{
			ID:             r.ID,
			Name:           r.Name,
			Classification: r.CategoryText,
			Requirement:    r.RequirementText,
			Credits:        credits,
			Grade:          r.Grade,
		}
	}

	return Payload{
		Subjects: subjects,
		Meta: Meta{
			Department:     dept.Letter,
			DepartmentName: dept.Name,
			Year:           year,
			FetchedAt:      s.clock.Now().UTC(),
			Source:         source,
		},
	}, nil
}

// readCSV returns an empty source when there is no csv file for the department.
func (s Server) readCSV(dept syllabus.Department, year string) ([]syllabus.SubjectRecord, string, error) {
	if s.opts.CSVDir == "" {
		return nil, "", nil
	}
	f, err := os.Open(filepath.Join(s.opts.CSVDir, export.CSVFileName(dept.Letter, year)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	records, err := export.ReadCSV(f, s.opts.Tokens)
	if err != nil {
		return nil, "", err
	}
	return records, SOURCE_CSV, nil
}

// Refresh reloads every department of a year into the cache, it keeps going past failed
// departments.
func (s Server) Refresh(ctx context.Context, year string) error {
	year, err := syllabus.NormalizeYear(year, s.opts.DefaultYear)
	if err != nil {
		return err
	}

	var errs []error
	for _, dept := range s.opts.Departments {
		payload, err := s.load(ctx, dept, year)
		if err != nil {
			s.tel.ReportWarning(report_server_refresh, err, dept.Letter, year)
			errs = append(errs, err)
			continue
		}
		s.cache.Set(cacheKey(dept, year), payload)
	}
	return errors.Join(errs...)
}
