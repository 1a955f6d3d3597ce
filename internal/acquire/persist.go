// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/qm-fetch/internal/indico"
	"github.com/pdiddy/qm-fetch/pkg/types"
)

// MetadataKey is the reserved top-level key holding the provenance record.
const MetadataKey = "metadata"

// FileWriteError reports a failure to persist an artifact.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// OutputPath returns the artifact path for a conference year.
func OutputPath(dataDir, year string) string {
	return filepath.Join(dataDir, "QM"+year+"_data.json")
}

// Persist attaches meta to payload under MetadataKey and writes the result
// as indented JSON. The file is written to a temporary name and renamed
// into place; a partial artifact must never exist under path. It returns
// the bytes written.
func Persist(path string, payload indico.Payload, meta types.Metadata) ([]byte, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, &FileWriteError{Path: path, Err: fmt.Errorf("marshaling metadata: %w", err)}
	}

	doc := make(map[string]json.RawMessage, len(payload)+1)
	for k, v := range payload {
		doc[k] = v
	}
	doc[MetadataKey] = metaJSON

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &FileWriteError{Path: path, Err: fmt.Errorf("marshaling payload: %w", err)}
	}
	data = append(data, '\n')

	if err := writeFileAtomic(path, data); err != nil {
		return nil, &FileWriteError{Path: path, Err: err}
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".qm-fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
