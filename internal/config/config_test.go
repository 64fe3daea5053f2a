package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveInFlightTTL(t *testing.T) {
	timeout := 60 * time.Second

	tests := []struct {
		name       string
		configured time.Duration
		want       time.Duration
	}{
		{name: "unset uses timeout plus margin", configured: 0, want: 90 * time.Second},
		{name: "shorter than timeout is raised", configured: 10 * time.Second, want: 90 * time.Second},
		{name: "equal to timeout is raised", configured: timeout, want: 90 * time.Second},
		{name: "negative is raised", configured: -time.Second, want: 90 * time.Second},
		{name: "longer value is kept", configured: 5 * time.Minute, want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveInFlightTTL(timeout, tt.configured))
		})
	}
}

func TestLoadClampsInFlightTTL(t *testing.T) {
	t.Setenv("CHAT_COMPLETION_TIMEOUT", "2m")
	t.Setenv("CHAT_INFLIGHT_TTL", "30s")

	cfg := Load()
	assert.Equal(t, 2*time.Minute, cfg.Chat.CompletionTimeout)
	assert.Equal(t, 2*time.Minute+inFlightMargin, cfg.Chat.InFlightTTL)
	assert.Greater(t, cfg.Chat.InFlightTTL, cfg.Chat.CompletionTimeout)
}
