package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAttachesModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("CHAT", "exchange completed", map[string]interface{}{"session_id": "s-1"})
	l.Error("CHAT", "assistant append failed", map[string]interface{}{"error": errors.New("disk full")})
	l.Warn("QUOTA", "no details", nil)

	entries := logs.All()
	assert.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "CHAT", first["module"])
	assert.Equal(t, map[string]interface{}{"session_id": "s-1"}, first["details"])

	second := entries[1].ContextMap()
	assert.Equal(t, "disk full", second["error"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	assert.Equal(t, "QUOTA", entries[2].ContextMap()["module"])
}
