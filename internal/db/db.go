package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Config selects either a local sqlite file or a remote libsql database.
type Config struct {
	// File is a local sqlite file, ":memory:" keeps everything in memory.
	File string `json:"file"`
	// Url is a remote libsql database (libsql://, https://), it takes precedence over File.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the configured database and applies the schema.
func OpenDB(config Config) (*sql.DB, error) {
	db, err := open(config)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func open(config Config) (*sql.DB, error) {
	if config.Url != "" {
		link, err := url.Parse(config.Url)
		if err != nil {
			return nil, err
		}
		if config.AuthToken != "" {
			query := link.Query()
			query.Set("authToken", config.AuthToken)
			link.RawQuery = query.Encode()
		}
		return sql.Open("libsql", link.String())
	}

	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if config.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(config.File), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if config.File != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
