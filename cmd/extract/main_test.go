package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsync-engine/internal/domain"
)

const domPage = `<html><body>
<h1 data-test-id="job-title">Data Analyst</h1>
<div data-test-id="job-details-company-name">Acme Co</div>
</body></html>`

func writePages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte(domPage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("<html><body></body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	return dir
}

func TestRunJSON(t *testing.T) {
	dir := writePages(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"-format", "json", "-workers", "2", "-job-id", "77", dir}, &out, &errOut)
	require.NoError(t, err, errOut.String())

	var got []fileResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, filepath.Join(dir, "a.html"), got[0].Path)
	assert.Equal(t, domain.MethodDOM, got[0].Method)
	require.Len(t, got[0].Records, 1)
	assert.Equal(t, "77", got[0].Records[0].ExternalID)
	assert.Equal(t, "Acme Co", got[0].Records[0].Company)

	assert.Empty(t, got[1].Records)
	assert.NotEmpty(t, got[1].Error)
}

func TestRunTable(t *testing.T) {
	dir := writePages(t)
	var out, errOut bytes.Buffer

	require.NoError(t, run(context.Background(), []string{filepath.Join(dir, "a.html")}, &out, &errOut))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "FILE"))
	assert.Contains(t, lines[1], "Data Analyst")
	assert.Contains(t, lines[1], "dom")
}

func TestRunRejectsBadInput(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Error(t, run(context.Background(), nil, &out, &errOut))
	assert.Error(t, run(context.Background(), []string{"-format", "xml", "x.html"}, &out, &errOut))
	assert.Error(t, run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.html")}, &out, &errOut))
}

func TestWriteTableAlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []fileResult{{
		Path:   "x.html",
		Method: domain.MethodJSON,
		Records: []domain.JobRecord{
			{ExternalID: "1", Title: "エンジニア", Company: "A", PostedDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
			{ExternalID: "2", Title: "Engineer", Company: "B"},
		},
	}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	col := func(line, s string) int { return runewidth.StringWidth(line[:strings.Index(line, s)]) }
	assert.Equal(t, col(lines[1], " A"), col(lines[2], " B"))
	assert.Contains(t, lines[1], "2025-06-01")
}
