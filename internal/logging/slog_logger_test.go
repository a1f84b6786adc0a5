package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/transient/pkg/transient"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestJSONLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, false)

	logger.Verbose("hidden %d", 1)
	logger.Info("retry %d of %d", 1, 3)
	logger.Error("gave up")

	records := decodeRecords(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "retry 1 of 3", records[0]["msg"])
	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, "gave up", records[1]["msg"])
}

func TestJSONLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	logger.Verbose("details")

	records := decodeRecords(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.NotNil(t, logger.Slog())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	l, err := New("", &buf, false)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, l)

	l, err = New("JSON", &buf, false)
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)

	_, err = New("xml", &buf, false)
	assert.ErrorIs(t, err, transient.ErrInvalidArgument)
}
