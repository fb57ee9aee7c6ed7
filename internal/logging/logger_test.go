package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestReplaceAttr(t *testing.T) {
	a := replaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", a.Key)
	a = replaceAttr(nil, slog.String("dialog", "m/s"))
	assert.Equal(t, "dialog", a.Key)
}
