package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerBuilder_DefaultConfig(t *testing.T) {
	l, err := NewLoggerBuilder().WithConfig(NewDefaultFileLogConfig()).Build()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, l.Level())
}

func TestConvertConfig(t *testing.T) {
	tests := []struct {
		name       string
		in         FileLogConfig
		wantLevel  zerolog.Level
		wantFormat LogFormat
		wantErr    bool
	}{
		{name: "defaults", in: FileLogConfig{}, wantLevel: zerolog.InfoLevel, wantFormat: FormatConsole},
		{name: "json debug", in: FileLogConfig{LogLevel: "DEBUG", LogFormat: "json"}, wantLevel: zerolog.DebugLevel, wantFormat: FormatJSON},
		{name: "text warn", in: FileLogConfig{LogLevel: "warn", LogFormat: "text"}, wantLevel: zerolog.WarnLevel, wantFormat: FormatText},
		{name: "bad level", in: FileLogConfig{LogLevel: "loud"}, wantLevel: zerolog.InfoLevel, wantFormat: FormatConsole, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertConfig(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantFormat, got.Format)
			assert.Equal(t, DefaultMaxLogSizeMB, got.MaxSizeMB)
		})
	}
}

func TestLoggerBuilder_JSONWithDeviceID(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().
		WithConsole(&buf).
		WithDeviceID("dev-1").
		WithConfig(FileLogConfig{LogFormat: "json", LogLevel: "info"}).
		Build()
	require.NoError(t, err)

	z := l.GetZerolog()
	z.Debug().Msg("hidden")
	z.Info().Str("component", "Test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "dev-1", entry["device_id"])
	assert.Equal(t, "Test", entry["component"])
}

func TestLoggerBuilder_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "webwatch.log")
	l, err := NewLoggerBuilder().
		WithConsole(&bytes.Buffer{}).
		WithConfig(FileLogConfig{LogFile: path, LogFormat: "json"}).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestLoggerBuilder_InvalidLevel(t *testing.T) {
	_, err := NewLoggerBuilder().WithConfig(FileLogConfig{LogLevel: "loud"}).Build()
	assert.Error(t, err)
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().
		WithConsole(&buf).
		WithConfig(FileLogConfig{LogFormat: "json", LogLevel: "warn"}).
		Build()
	require.NoError(t, err)
	z := l.GetZerolog()

	z.Info().Msg("before")
	assert.Empty(t, buf.String())

	require.NoError(t, l.SetLevel("debug"))
	assert.Equal(t, zerolog.DebugLevel, l.Level())
	z.Debug().Msg("after")
	assert.Contains(t, buf.String(), `"message":"after"`)

	assert.Error(t, l.SetLevel("loud"))
	assert.Equal(t, zerolog.DebugLevel, l.Level())
}
