package server

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/fsnotify/fsnotify"
)

const report_server_watch = "server.watch-csv-dir"

var csvNameRegex = regexp.MustCompile(`^([A-Za-z])_(\d{4})\.csv$`)

// WatchCSVDir drops the cached payload of a department whenever its csv file in CSVDir is
// created, written, renamed or removed. It returns once the watch is set up, the watch
// itself lasts until ctx is done.
func (s Server) WatchCSVDir(ctx context.Context) error {
	if s.opts.CSVDir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = watcher.Add(s.opts.CSVDir)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.opts.CSVDir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op == fsnotify.Chmod {
					continue
				}
				s.invalidate(event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.tel.ReportWarning(report_server_watch, err)
			}
		}
	}()
	return nil
}

// invalidate drops the cache entry of a {letter}_{year}.csv file, it reports false for
// any other file.
func (s Server) invalidate(path string) bool {
	match := csvNameRegex.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return false
	}
	dept, err := s.opts.Departments.Lookup(match[1])
	if err != nil {
		return false
	}
	s.cache.Delete(cacheKey(dept, match[2]))
	s.tel.ReportDebug(report_server_watch, "invalidated", dept.Letter, match[2])
	return true
}
