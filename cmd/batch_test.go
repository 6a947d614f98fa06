package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracelight/osint-cli/internal/model"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBatchFile(t *testing.T) {
	path := writeTempFile(t, "numbers.csv", strings.Join([]string{
		"number,region",
		"# scraped 2026-08-12",
		"+919876501234",
		"9876501234,in",
		"",
		"+14155550123,US",
	}, "\n"))

	entries, err := readBatchFile(path, "IN")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, batchEntry{number: "+919876501234", region: "IN"}, entries[0])
	assert.Equal(t, batchEntry{number: "9876501234", region: "IN"}, entries[1])
	assert.Equal(t, batchEntry{number: "+14155550123", region: "US"}, entries[2])
}

func TestReadBatchFile_HeaderVariants(t *testing.T) {
	path := writeTempFile(t, "numbers.csv", "phone_number\n+919876501234\n")

	entries, err := readBatchFile(path, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "+919876501234", entries[0].number)
	assert.Empty(t, entries[0].region)
}

func TestReadBatchFile_Missing(t *testing.T) {
	_, err := readBatchFile(filepath.Join(t.TempDir(), "nope.csv"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch: open")
}

func TestWriteBatchResults_SkipsNilSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	results := []*model.AggregatedIntelligence{
		{ID: "a", Identifier: "+919876501234", CreatedAt: time.Now().UTC()},
		nil,
		{ID: "b", Identifier: "+14155550123", CreatedAt: time.Now().UTC()},
	}

	require.NoError(t, writeBatchResults(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first model.AggregatedIntelligence
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "+919876501234", first.Identifier)
}

func TestParseSources(t *testing.T) {
	sources, err := parseSources([]string{"libphonenumber", "numverify"})
	require.NoError(t, err)
	assert.Equal(t, []model.Source{model.SourceLocal, model.SourceNumVerify}, sources)

	none, err := parseSources(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseSources([]string{"psychic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psychic")
}
