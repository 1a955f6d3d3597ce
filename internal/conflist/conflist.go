// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conflist reads the list of conferences to fetch.
//
// The plain-text format holds one "<year> <indico_id>" pair per line.
// Blank lines and lines starting with '#' are ignored; any other line
// that does not hold exactly two tokens is rejected. Files ending in
// .yaml or .yml are decoded as a list of {year, indico_id} records.
package conflist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qm-fetch/pkg/types"
)

// MalformedInputError reports a list entry that cannot be read as a
// (year, indico_id) pair. Line is 1-based; for YAML lists it is the
// 1-based entry index.
type MalformedInputError struct {
	Line int
	Text string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("line %d: expected \"<year> <indico_id>\", got %q", e.Line, e.Text)
}

// Read loads the conference list at path. The file format is chosen by
// extension.
func Read(path string) ([]types.Conference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening conference list: %w", err)
	}
	defer f.Close()

	var confs []types.Conference
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		confs, err = ParseYAML(f)
	default:
		confs, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return confs, nil
}

// Parse reads the plain-text list format, preserving line order.
func Parse(r io.Reader) ([]types.Conference, error) {
	var confs []types.Conference
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, &MalformedInputError{Line: lineNo, Text: line}
		}
		confs = append(confs, types.Conference{Year: fields[0], IndicoID: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return confs, nil
}

// ParseYAML reads a YAML sequence of {year, indico_id} records.
func ParseYAML(r io.Reader) ([]types.Conference, error) {
	var confs []types.Conference
	if err := yaml.NewDecoder(r).Decode(&confs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing YAML list: %w", err)
	}
	for i, c := range confs {
		c.Year = strings.TrimSpace(c.Year)
		c.IndicoID = strings.TrimSpace(c.IndicoID)
		if c.Year == "" || c.IndicoID == "" {
			return nil, &MalformedInputError{
				Line: i + 1,
				Text: fmt.Sprintf("year=%q indico_id=%q", c.Year, c.IndicoID),
			}
		}
		confs[i] = c
	}
	return confs, nil
}
