package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("account_number", "01123456").Msg("transaction committed")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output), "logger output should be valid JSON")

	assert.Equal(t, "transaction committed", output["message"])
	assert.Equal(t, "01123456", output["account_number"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, Service, output["service"])
	assert.Contains(t, output, "time")
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		emit      func(l zerolog.Logger)
		wantEmpty bool
	}{
		{"debug", func(l zerolog.Logger) { l.Debug().Msg("x") }, false},
		{"info", func(l zerolog.Logger) { l.Debug().Msg("x") }, true},
		{"warn", func(l zerolog.Logger) { l.Info().Msg("x") }, true},
		{"warn", func(l zerolog.Logger) { l.Warn().Msg("x") }, false},
		{"error", func(l zerolog.Logger) { l.Warn().Msg("x") }, true},
		{"ERROR", func(l zerolog.Logger) { l.Error().Msg("x") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(NewWithWriter(tt.level, &buf))
			assert.Equal(t, tt.wantEmpty, buf.Len() == 0)
		})
	}
}

func TestNewWithWriter_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("verbose", &buf)

	log.Debug().Msg("should not appear")
	assert.Empty(t, buf.String())

	log.Info().Msg("should appear")
	assert.NotEmpty(t, buf.String())
}

func TestNew_PrettyMode(t *testing.T) {
	log := New("info", true)
	log.Info().Msg("pretty mode test")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter("info", &buf), "balance_engine")

	log.Info().Msg("committed")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "balance_engine", output["component"])
	assert.Equal(t, Service, output["service"])
}
