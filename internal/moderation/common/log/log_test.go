package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	entries []string
	fields  []map[string]any
}

func (l *testLogger) record(level, msg string, fields map[string]any) {
	l.entries = append(l.entries, level+":"+msg)
	l.fields = append(l.fields, fields)
}

func (l *testLogger) Info(f map[string]any, msg string)  { l.record("INFO", msg, f) }
func (l *testLogger) Error(f map[string]any, msg string) { l.record("ERROR", msg, f) }
func (l *testLogger) Debug(f map[string]any, msg string) { l.record("DEBUG", msg, f) }
func (l *testLogger) Warn(f map[string]any, msg string)  { l.record("WARN", msg, f) }
func (l *testLogger) Panic(f map[string]any, msg string) {}
func (l *testLogger) Fatal(f map[string]any, msg string) {}

func TestActualZapLogger(t *testing.T) {
	Debug(map[string]any{
		"key1":  "value1",
		"key2":  42,
		"key3":  true,
		"error": errors.New("boom"),
	}, "test debug")
	Info(nil, "test info")
	Warn(nil, "test warn")
	Error(nil, "test error")
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic, but none occurred")
		}
	}()
	Panic(nil, "test panic")
}

func TestSetLoggerAndGlobalLogging(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)
	tlog := &testLogger{}
	SetLogger(tlog)

	Info(nil, "info msg")
	Error(nil, "error msg")
	Debug(nil, "debug msg")
	Warn(nil, "warn msg")

	assert.Equal(t, []string{
		"INFO:info msg",
		"ERROR:error msg",
		"DEBUG:debug msg",
		"WARN:warn msg",
	}, tlog.entries)
}

func TestConfigure(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	tests := []struct {
		env, level string
		wantErr    bool
	}{
		{"dev", "debug", false},
		{"prod", "info", false},
		{"prod", " WARN ", false},
		{"dev", "notalevel", true},
	}
	for _, tt := range tests {
		err := Configure(tt.env, tt.level)
		if tt.wantErr {
			assert.Error(t, err, "Configure(%q, %q)", tt.env, tt.level)
		} else {
			assert.NoError(t, err, "Configure(%q, %q)", tt.env, tt.level)
		}
	}
}

func TestWithFields_MergesAndOverrides(t *testing.T) {
	tlog := &testLogger{}
	l := WithFields(tlog, map[string]any{"component": "remote", "attempt": 1})

	l.Warn(map[string]any{"attempt": 2, "error": "timeout"}, "fallback")
	l.Info(nil, "ok")

	require.Len(t, tlog.fields, 2)
	assert.Equal(t, map[string]any{"component": "remote", "attempt": 2, "error": "timeout"}, tlog.fields[0])
	assert.Equal(t, map[string]any{"component": "remote", "attempt": 1}, tlog.fields[1])
	assert.Equal(t, []string{"WARN:fallback", "INFO:ok"}, tlog.entries)
}

func TestWithFields_EmptyBaseReturnsSameLogger(t *testing.T) {
	tlog := &testLogger{}
	assert.Same(t, tlog, WithFields(tlog, nil))
}

func TestZapFields_SortedKeys(t *testing.T) {
	fields := zapFields(map[string]any{"b": 1, "a": 2, "c": errors.New("x")})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "c", fields[2].Key)
	assert.Nil(t, zapFields(nil))
}

func TestNoopLogger_AllLevels(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)
	SetLogger(NewNoopLogger())

	Debug(nil, "debug message")
	Info(nil, "info message")
	Warn(nil, "warn message")
	Error(nil, "error message")
	Panic(nil, "panic message")
	Fatal(nil, "fatal message")
}
