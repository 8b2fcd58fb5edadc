package commands

import (
	"creditcounter/internal/catalog"
	"creditcounter/internal/components/chrono"
	"creditcounter/internal/db"
	"creditcounter/internal/publish"
	"creditcounter/internal/scrapers/kosen"
	"creditcounter/internal/syllabus"
	"creditcounter/lib/configutil"
	"creditcounter/lib/telemetry"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	FORMAT_CSV  = "csv"
	FORMAT_XLSX = "xlsx"
)

type Config struct {
	SchoolID    string                `json:"school_id"`
	BaseUrl     string                `json:"base_url"`
	DefaultYear string                `json:"default_year"`
	Departments []syllabus.Department `json:"departments"`

	OutputDir string   `json:"output_dir"`
	Formats   []string `json:"formats"`
	// Normalize applies the display normalization (dedupe, 日本語 override) before writing.
	Normalize bool `json:"normalize"`

	Tokens             syllabus.Tokens `json:"tokens"`
	SkipHeader         bool            `json:"skip_header"`
	IdentifierScheme   string          `json:"identifier_scheme"`
	ClampGradeOverflow bool            `json:"clamp_grade_overflow"`

	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	UserAgent         string  `json:"user_agent"`
	BrowserTransport  bool    `json:"browser_transport"`
	// DumpHttpDir receives every request/response pair when set.
	DumpHttpDir string `json:"dump_http_dir"`

	CSVDir          string    `json:"csv_dir"`
	Database        db.Config `json:"database"`
	CacheTTLMinutes int       `json:"cache_ttl_minutes"`
	Port            int       `json:"port"`
	// RefreshCron reloads every department into the api cache on a schedule, empty disables it.
	RefreshCron string `json:"refresh_cron"`

	// Publish uploads the written catalogs to a B2 bucket after a scrape, the credentials
	// are read from the environment.
	Publish publish.Config `json:"publish"`

	Telemetry telemetry.Config `json:"telemetry"`
}

// EnvLibsqlAuthToken is used for database.auth_token when the config leaves it empty.
const EnvLibsqlAuthToken = "LIBSQL_AUTH_TOKEN"

// DefaultConfig is used for every key the config files leave out.
func DefaultConfig(clock chrono.API) Config {
	return Config{
		SchoolID:          kosen.DefaultSchoolID,
		BaseUrl:           kosen.DefaultBaseUrl,
		DefaultYear:       strconv.Itoa(clock.Now().Year()),
		Departments:       syllabus.DefaultDepartments,
		OutputDir:         ".",
		Formats:           []string{FORMAT_CSV},
		Tokens:            syllabus.DefaultTokens,
		IdentifierScheme:  "per_subject",
		RequestsPerSecond: 1,
		TimeoutSeconds:    30,
		UserAgent:         kosen.DefaultUserAgent,
		Database:          db.Config{File: "creditcounter.db"},
		CacheTTLMinutes:   15,
		Port:              8000,
	}
}

func LoadConfig(path string, clock chrono.API) (Config, error) {
	defaults := DefaultConfig(clock)
	// nil tells a missing list apart from an explicit empty one
	base := defaults
	base.Departments = nil
	base.Tokens.TermMarkers = nil

	cfg, err := configutil.ReadConfigWithDefaults(path, base)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg.Departments == nil {
		cfg.Departments = defaults.Departments
	}
	if cfg.Tokens.TermMarkers == nil {
		cfg.Tokens.TermMarkers = defaults.Tokens.TermMarkers
	}
	if cfg.Database.AuthToken == "" {
		cfg.Database.AuthToken = os.Getenv(EnvLibsqlAuthToken)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	_, err := syllabus.ParseIdentifierScheme(c.IdentifierScheme)
	if err != nil {
		return err
	}
	_, err = syllabus.NormalizeYear(c.DefaultYear, "")
	if err != nil {
		return fmt.Errorf("default_year: %w", err)
	}
	for _, f := range c.Formats {
		if f != FORMAT_CSV && f != FORMAT_XLSX {
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	if len(c.Departments) == 0 {
		return fmt.Errorf("no departments configured")
	}
	return nil
}

func (c Config) CatalogOptions() catalog.Options {
	// Validate has already rejected unknown schemes
	scheme, _ := syllabus.ParseIdentifierScheme(c.IdentifierScheme)
	return catalog.Options{
		Tokens:             c.Tokens,
		SkipHeader:         c.SkipHeader,
		Scheme:             scheme,
		ClampGradeOverflow: c.ClampGradeOverflow,
	}
}

func (c Config) ClientOptions() kosen.ClientOptions {
	return kosen.ClientOptions{
		BaseUrl:           c.BaseUrl,
		SchoolID:          c.SchoolID,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		UserAgent:         c.UserAgent,
		BrowserTransport:  c.BrowserTransport,
	}
}
