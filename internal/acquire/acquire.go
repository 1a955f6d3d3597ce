// Package acquire downloads conference exports and caches them on disk.
//
// Each conference is fetched at most once: if its QM<year>_data.json
// artifact already exists the conference is skipped without a network
// call, regardless of the file's content or age.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/qm-fetch/internal/indico"
	"github.com/pdiddy/qm-fetch/pkg/types"
)

// now is the clock used for download_date. Tests replace it.
var now = time.Now

// EventFetcher retrieves the Indico export for one event.
type EventFetcher interface {
	FetchEvent(ctx context.Context, indicoID string) (indico.Payload, error)
}

// Recorder receives every artifact written during a batch.
type Recorder interface {
	RecordArtifact(ctx context.Context, path string, data []byte) error
}

// Status is the terminal state of one conference in a batch.
type Status int

const (
	StatusSkipped Status = iota
	StatusFetched
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusFetched:
		return "fetched"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome records what happened to one conference.
type Outcome struct {
	Conference types.Conference
	Status     Status
	Path       string
	Err        error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Fetched  int
	Skipped  int
	Failed   int
	Outcomes []Outcome
}

// Total returns the number of conferences processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Skipped + r.Failed
}

// HasFailures reports whether any conference failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchConference fetches and persists one conference unless its artifact
// already exists. The data directory must exist.
func FetchConference(ctx context.Context, f EventFetcher, conf types.Conference, dataDir string) Outcome {
	path := OutputPath(dataDir, conf.Year)
	out := Outcome{Conference: conf, Path: path}

	if _, err := os.Stat(path); err == nil {
		out.Status = StatusSkipped
		return out
	} else if !errors.Is(err, os.ErrNotExist) {
		out.Status = StatusFailed
		out.Err = &FileWriteError{Path: path, Err: err}
		return out
	}

	payload, err := f.FetchEvent(ctx, conf.IndicoID)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	meta := types.Metadata{
		Year:         conf.Year,
		IndicoID:     conf.IndicoID,
		DownloadDate: now().Format(time.RFC3339),
	}
	if _, err := Persist(path, payload, meta); err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	out.Status = StatusFetched
	return out
}

// FetchBatch processes conferences in order, printing per-item status and
// returning a summary. The data directory is created once up front; that
// is the only error returned. Individual failures are reported and the
// batch continues. rec may be nil.
func FetchBatch(ctx context.Context, f EventFetcher, confs []types.Conference, cfg types.FetchConfig, w io.Writer, rec Recorder) (BatchResult, error) {
	var result BatchResult

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return result, fmt.Errorf("creating directory %s: %w", cfg.DataDir, err)
	}

	for _, conf := range confs {
		out := FetchConference(ctx, f, conf, cfg.DataDir)
		result.Outcomes = append(result.Outcomes, out)

		switch out.Status {
		case StatusSkipped:
			result.Skipped++
			fmt.Fprintf(w, "skipped: %s (already exists)\n", conf.Label())
		case StatusFailed:
			result.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", conf.Label(), out.Err)
			zap.L().Debug("conference failed",
				zap.String("year", conf.Year),
				zap.String("indico_id", conf.IndicoID),
				zap.Error(out.Err),
			)
		case StatusFetched:
			result.Fetched++
			fmt.Fprintf(w, "saved:   %s -> %s\n", conf.Label(), out.Path)
			if rec != nil {
				record(ctx, rec, out.Path, w)
			}
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d skipped, %d failed (total: %d)\n",
		result.Fetched, result.Skipped, result.Failed, result.Total())
	return result, nil
}

func record(ctx context.Context, rec Recorder, path string, w io.Writer) {
	data, err := os.ReadFile(path)
	if err == nil {
		err = rec.RecordArtifact(ctx, path, data)
	}
	if err != nil {
		fmt.Fprintf(w, "  warning: catalog update failed: %v\n", err)
	}
}
