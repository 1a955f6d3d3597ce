package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qm-fetch/internal/catalog"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func newIndicoServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/export/event/"), ".json")
		if id == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"results": [{"id": %q, "title": "QM event %s", "startDate": {"date": "2019-11-03"}}]}`, id, id)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeList(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	var calls int32
	ts := newIndicoServer(t, &calls)
	list := writeList(t, dir, "2019 773831\n2022 1139644\n")
	dataDir := filepath.Join(dir, "data")

	out, err := executeCmd(t, "fetch", list, "--data-dir", dataDir, "--base-url", ts.URL, "--catalog=true")
	require.NoError(t, err, out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.FileExists(t, filepath.Join(dataDir, "QM2019_data.json"))
	assert.FileExists(t, filepath.Join(dataDir, "QM2022_data.json"))
	assert.Contains(t, out, "Batch summary: 2 fetched, 0 skipped, 0 failed")

	out, err = executeCmd(t, "fetch", list, "--data-dir", dataDir, "--base-url", ts.URL, "--catalog=true")
	require.NoError(t, err, out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "second run must not contact the server")
	assert.Contains(t, out, "skipped: QM2019 (already exists)")

	out, err = executeCmd(t, "catalog", "--data-dir", dataDir, "--format", "json", "--rebuild=false")
	require.NoError(t, err, out)
	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries), out)
	require.Len(t, entries, 2)
	assert.Equal(t, "2019", entries[0].Year)
	assert.Equal(t, "QM event 773831", entries[0].Title)
	assert.Equal(t, "1139644", entries[1].IndicoID)
}

func TestFetchCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	var calls int32
	ts := newIndicoServer(t, &calls)
	list := writeList(t, dir, "2017 500\n2018 656452\n")
	dataDir := filepath.Join(dir, "data")

	out, err := executeCmd(t, "fetch", list, "--data-dir", dataDir, "--base-url", ts.URL, "--catalog=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 conference(s) failed")
	assert.Contains(t, out, "failed:  QM2017")
	assert.FileExists(t, filepath.Join(dataDir, "QM2018_data.json"))
	assert.NoFileExists(t, filepath.Join(dataDir, catalog.DBFile))
}

func TestFetchCommandMalformedList(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	var calls int32
	ts := newIndicoServer(t, &calls)
	list := writeList(t, dir, "2019 773831\n2022\n")

	_, err := executeCmd(t, "fetch", list, "--data-dir", filepath.Join(dir, "data"), "--base-url", ts.URL, "--catalog=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchCommandMissingList(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := executeCmd(t, "fetch", filepath.Join(dir, "absent.txt"), "--data-dir", filepath.Join(dir, "data"), "--catalog=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening conference list")
}

func TestCatalogRebuildYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "QM2023_data.json"),
		[]byte(`{"metadata": {"year": "2023", "indico_id": "1139644", "download_date": "2026-10-19T00:00:00Z"}}`), 0o644))

	out, err := executeCmd(t, "catalog", "--data-dir", dataDir, "--rebuild", "--format", "yaml")
	require.NoError(t, err, out)
	assert.Contains(t, out, "catalog rebuilt: 1 conference(s)")
	assert.Contains(t, out, "indico_id: \"1139644\"")
}

func TestCatalogBadFormat(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	_, err := executeCmd(t, "catalog", "--data-dir", dir, "--rebuild=false", "--format", "xml")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	chdir(t, t.TempDir())
	out, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "qm-fetch dev\n", out)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
