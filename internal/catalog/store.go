// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite index of cached conference exports.
//
// The catalog is derived data: it is rebuilt from the artifacts in the
// data directory and never decides whether a conference is fetched.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DBFile is the catalog file name inside the data directory.
const DBFile = "catalog.db"

// Entry describes one cached conference.
type Entry struct {
	Year         string `json:"year" yaml:"year"`
	IndicoID     string `json:"indico_id" yaml:"indico_id"`
	Path         string `json:"path" yaml:"path"`
	DownloadDate string `json:"download_date" yaml:"download_date"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	StartDate    string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	Location     string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Store manages the catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS conferences (
		year TEXT PRIMARY KEY,
		indico_id TEXT NOT NULL,
		path TEXT NOT NULL,
		download_date TEXT,
		title TEXT,
		start_date TEXT,
		location TEXT
	)`)
	return err
}

// Record inserts or replaces the entry for e.Year.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conferences (year, indico_id, path, download_date, title, start_date, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(year) DO UPDATE SET
			indico_id=excluded.indico_id, path=excluded.path,
			download_date=excluded.download_date, title=excluded.title,
			start_date=excluded.start_date, location=excluded.location`,
		e.Year, e.IndicoID, e.Path, e.DownloadDate, e.Title, e.StartDate, e.Location,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.Year, err)
	}
	return nil
}

// RecordArtifact records the artifact at path whose contents are data.
func (s *Store) RecordArtifact(ctx context.Context, path string, data []byte) error {
	e, ok := EntryFromFile(path, data)
	if !ok {
		return fmt.Errorf("%s has no metadata record", path)
	}
	zap.L().Debug("catalog record", zap.String("year", e.Year), zap.String("path", path))
	return s.Record(ctx, e)
}

// List returns all entries ordered by year.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, indico_id, path,
			COALESCE(download_date, ''), COALESCE(title, ''),
			COALESCE(start_date, ''), COALESCE(location, '')
		 FROM conferences ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Year, &e.IndicoID, &e.Path, &e.DownloadDate, &e.Title, &e.StartDate, &e.Location); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Rebuild replaces the catalog contents with the artifacts found in
// dataDir. Files without a metadata record are ignored. It returns the
// number of entries recorded.
func (s *Store) Rebuild(ctx context.Context, dataDir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, "QM*_data.json"))
	if err != nil {
		return 0, fmt.Errorf("listing artifacts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conferences`); err != nil {
		return 0, fmt.Errorf("clearing catalog: %w", err)
	}

	n := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		e, ok := EntryFromFile(path, data)
		if !ok {
			zap.L().Debug("catalog skip", zap.String("path", path))
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO conferences (year, indico_id, path, download_date, title, start_date, location)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Year, e.IndicoID, e.Path, e.DownloadDate, e.Title, e.StartDate, e.Location,
		)
		if err != nil {
			return 0, fmt.Errorf("recording %s: %w", path, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog: %w", err)
	}
	return n, nil
}

// EntryFromFile extracts a catalog entry from artifact bytes. Event
// details come from the first element of the export's "results" array.
// ok is false when the metadata record is missing or incomplete.
func EntryFromFile(path string, data []byte) (e Entry, ok bool) {
	if !gjson.ValidBytes(data) {
		return Entry{}, false
	}
	doc := gjson.ParseBytes(data)
	meta := doc.Get("metadata")
	e = Entry{
		Year:         meta.Get("year").String(),
		IndicoID:     meta.Get("indico_id").String(),
		Path:         path,
		DownloadDate: meta.Get("download_date").String(),
	}
	if e.Year == "" || e.IndicoID == "" {
		return Entry{}, false
	}

	event := doc.Get("results.0")
	e.Title = strings.TrimSpace(event.Get("title").String())
	e.StartDate = event.Get("startDate.date").String()
	e.Location = strings.TrimSpace(event.Get("location").String())
	return e, true
}
