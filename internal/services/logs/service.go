// Package logs reads, summarises and clears the server's own log files.
package logs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/logging"
)

// Paging defaults for Query.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

const (
	filterCacheSize = 128
	maxLineBytes    = 1 << 20
	dateLayout      = "2006-01-02"
)

// Query selects log entries. Zero values mean no constraint; Page and
// PageSize fall back to 1 and DefaultPageSize.
type Query struct {
	Level     string
	StartDate string
	EndDate   string
	Search    string
	Filter    string
	Page      int
	PageSize  int
}

// Result is one page of matching entries.
type Result struct {
	Total    int     `json:"total"`
	Logs     []Entry `json:"logs"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// Stats describes the log files.
type Stats struct {
	TotalLogs        int        `json:"total_logs"`
	ErrorLogs        int        `json:"error_logs"`
	LogFileSize      int64      `json:"log_file_size"`
	ErrorLogFileSize int64      `json:"error_log_file_size"`
	LastUpdated      *time.Time `json:"last_updated"`
}

// ClientError is an error reported by the web client.
type ClientError struct {
	Message        string  `json:"message"`
	Stack          *string `json:"stack"`
	ComponentStack *string `json:"componentStack"`
	UserAgent      *string `json:"userAgent"`
	URL            *string `json:"url"`
}

// Service operates on the log directory written by the logging package.
// An empty directory means file logging is disabled and every read is empty.
type Service struct {
	dir        string
	production bool
	filters    *compiledFilters
}

// NewService creates a log service over dir.
func NewService(dir string, production bool) *Service {
	return &Service{dir: dir, production: production, filters: newCompiledFilters(filterCacheSize)}
}

func (s *Service) appLog() string   { return filepath.Join(s.dir, logging.AppLogFile) }
func (s *Service) errorLog() string { return filepath.Join(s.dir, logging.ErrorLogFile) }

// RecordClientError writes a client reported error at error level.
func (s *Service) RecordClientError(ctx context.Context, in ClientError) error {
	if strings.TrimSpace(in.Message) == "" {
		return apperr.Malformed("message is required")
	}
	ev := zerolog.Ctx(ctx).Error().Str("source", "frontend")
	if in.Stack != nil {
		ev = ev.Str("stack", *in.Stack)
	}
	if in.ComponentStack != nil {
		ev = ev.Str("component_stack", *in.ComponentStack)
	}
	if in.UserAgent != nil {
		ev = ev.Str("user_agent", *in.UserAgent)
	}
	if in.URL != nil {
		ev = ev.Str("url", *in.URL)
	}
	ev.Msg("Frontend Error: " + in.Message)
	return nil
}

type window struct {
	from, to time.Time
}

func (w window) contains(t time.Time) bool {
	if !w.from.IsZero() && t.Before(w.from) {
		return false
	}
	if !w.to.IsZero() && !t.Before(w.to) {
		return false
	}
	return true
}

func (w window) set() bool { return !w.from.IsZero() || !w.to.IsZero() }

// parseBound accepts YYYY-MM-DD or RFC3339. A date-only end bound covers the whole day.
func parseBound(value string, end bool) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		if end {
			return t.AddDate(0, 0, 1), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		return t.Add(time.Nanosecond), nil
	}
	return t, nil
}

// Query scans the application log, oldest first, and returns one page of matches.
func (s *Service) Query(ctx context.Context, q Query) (*Result, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 1 {
		return nil, apperr.Malformed("page must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return nil, apperr.Malformed(fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	}

	var w window
	var err error
	if q.StartDate != "" {
		if w.from, err = parseBound(q.StartDate, false); err != nil {
			return nil, apperr.Malformed("Invalid start_date")
		}
	}
	if q.EndDate != "" {
		if w.to, err = parseBound(q.EndDate, true); err != nil {
			return nil, apperr.Malformed("Invalid end_date")
		}
	}
	ev, err := s.filters.compile(q.Filter)
	if err != nil {
		return nil, apperr.Malformed(fmt.Sprintf("Invalid filter: %v", err))
	}
	level := normalizeLevel(q.Level)
	search := strings.ToLower(q.Search)

	res := &Result{Logs: []Entry{}, Page: q.Page, PageSize: q.PageSize}
	if s.dir == "" {
		return res, nil
	}
	f, err := os.Open(s.appLog())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, nil
		}
		return nil, apperr.Internal("Failed to query logs", err)
	}
	defer f.Close()

	skip := (q.Page - 1) * q.PageSize
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for n := 0; scanner.Scan(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		entry, raw, err := parseLine(line)
		if err != nil {
			continue
		}
		if level != "" && entry.Level != level {
			continue
		}
		if w.set() {
			ts, ok := entry.time()
			if !ok || !w.contains(ts) {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Message), search) {
			continue
		}
		if !matches(ev, raw) {
			continue
		}

		if res.Total >= skip && len(res.Logs) < q.PageSize {
			res.Logs = append(res.Logs, *entry)
		}
		res.Total++
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Internal("Failed to query logs", err)
	}
	return res, nil
}

// Stats counts lines and reports sizes of both log files.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	if s.dir == "" {
		return st, nil
	}

	lines, size, mtime, err := fileStats(s.appLog())
	if err != nil {
		return nil, apperr.Internal("Failed to get log stats", err)
	}
	st.TotalLogs, st.LogFileSize = lines, size
	if !mtime.IsZero() {
		t := mtime.UTC()
		st.LastUpdated = &t
	}

	lines, size, _, err = fileStats(s.errorLog())
	if err != nil {
		return nil, apperr.Internal("Failed to get log stats", err)
	}
	st.ErrorLogs, st.ErrorLogFileSize = lines, size
	return st, nil
}

// fileStats returns zero values for a missing file.
func fileStats(path string) (lines int, size int64, mtime time.Time, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, time.Time{}, nil
		}
		return 0, 0, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	lines, err = countLines(f)
	return lines, info.Size(), info.ModTime(), err
}

func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 32*1024)
	count := 0
	for {
		n, err := r.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}

// Clear truncates both log files. It is refused in production.
func (s *Service) Clear(ctx context.Context) error {
	if s.production {
		return apperr.Forbidden("Cannot clear logs in production")
	}
	if s.dir == "" {
		return nil
	}
	for _, path := range []string{s.appLog(), s.errorLog()} {
		if err := os.Truncate(path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return apperr.Internal("Failed to clear logs", err)
		}
	}
	zerolog.Ctx(ctx).Info().Msg("log files cleared")
	return nil
}
