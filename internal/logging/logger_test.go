package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBufferRingAndFilter(t *testing.T) {
	lb := NewLogBuffer(3)
	put(lb, "info", "one")
	put(lb, "warn", "two")
	put(lb, "error", "three")
	put(lb, "info", "four")

	all := lb.Entries(nil)
	require.Len(t, all, 3)
	assert.Equal(t, "two", all[0].Message)
	assert.Equal(t, "four", all[2].Message)

	filtered := lb.Entries([]string{"WARN", " error"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "two", filtered[0].Message)
	assert.Equal(t, "three", filtered[1].Message)

	lb.Resize(1)
	assert.Equal(t, []string{"four"}, messages(lb.Entries(nil)))

	lb.Clear()
	assert.Empty(t, lb.Entries(nil))
}

func TestLogBufferHook(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.AddHook(lb)

	logger.WithField("component", "site").Warn("missing mount")

	entries := lb.Entries([]string{"warn"})
	require.Len(t, entries, 1)
	assert.Equal(t, "site", entries[0].Component)
	assert.Equal(t, "missing mount", entries[0].Message)
}

func TestSetupJSONAndVerbose(t *testing.T) {
	var out bytes.Buffer
	Setup(Config{Level: "warn"}, Options{Output: &out, JSON: true, Verbose: true})
	t.Cleanup(func() { Setup(Config{}, Options{Output: &bytes.Buffer{}}) })

	NewLogger("test").WithField("route", "/config").Debug("rendered")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "rendered", decoded["msg"])
	assert.Equal(t, "test", decoded["component"])
	assert.Equal(t, "/config", decoded["route"])
}

func TestSetupLevelFromConfig(t *testing.T) {
	var out bytes.Buffer
	Setup(Config{Level: "error"}, Options{Output: &out})
	t.Cleanup(func() { Setup(Config{}, Options{Output: &bytes.Buffer{}}) })

	NewLogger("test").Info("hidden")
	assert.Empty(t, out.String())

	NewLogger("test").Error("shown")
	assert.Contains(t, out.String(), "[ERROR] [test] shown")
}

func TestNewLoggerIsCached(t *testing.T) {
	assert.Same(t, NewLogger("cache"), NewLogger("cache"))
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{DisableTimestamp: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.WarnLevel,
		Message: "no active entry",
		Data:    logrus.Fields{"component": "nav", "path": "/x", "entries": 5},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[WARN] [nav] no active entry entries=5 path=/x\n", string(out))
}

func messages(entries []LogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func put(lb *LogBuffer, level, message string) {
	lb.add(LogEntry{Timestamp: time.Now(), Level: level, Message: message})
}
