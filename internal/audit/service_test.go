package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

func readEvents(t *testing.T, path string) []AuditEvent {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event AuditEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestDisabledServiceDropsEvents(t *testing.T) {
	service, err := NewService(false, "", 0, logging.NewNop())
	require.NoError(t, err)

	service.LogRejection("id", "127.0.0.1", "a.zip", "nope")
	assert.False(t, service.IsEnabled())
	assert.NoError(t, service.Close())
}

func TestLogInspectionWritesJSONLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "audit.jsonl")
	service, err := NewService(true, path, 0, logging.NewNop())
	require.NoError(t, err)

	service.LogInspection("req-1", "10.0.0.1", "sample.zip", "report.xml", true, "", 1500*time.Millisecond,
		map[string]any{"matching_files": 2})
	service.LogRejection("req-2", "10.0.0.1", "notes.txt", "Invalid file type. Only ZIP files are allowed.")
	require.NoError(t, service.Close())

	events := readEvents(t, path)
	require.Len(t, events, 2)

	assert.Equal(t, EventArchiveInspect, events[0].EventType)
	assert.Equal(t, SeverityInfo, events[0].Severity)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, int64(1500), events[0].DurationMs)
	assert.False(t, events[0].Timestamp.IsZero())

	assert.Equal(t, EventArchiveRejected, events[1].EventType)
	assert.Equal(t, SeverityWarning, events[1].Severity)
	assert.False(t, events[1].Success)
}

func TestLogRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	service, err := NewService(true, path, 1, logging.NewNop())
	require.NoError(t, err)

	service.LogRejection("a", "", "one.zip", "x")
	service.LogRejection("b", "", "two.zip", "y")
	require.NoError(t, service.Close())

	first := readEvents(t, filepath.Join(dir, "audit-1.jsonl"))
	second := readEvents(t, filepath.Join(dir, "audit-2.jsonl"))
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "a", first[0].RequestID)
	assert.Equal(t, "b", second[0].RequestID)

	_, err = os.Stat(path)
	assert.NoError(t, err, "a fresh current file is reopened after rotation")
}
