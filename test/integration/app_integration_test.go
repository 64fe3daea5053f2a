package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mentor-ai-be/internal/bootstrap"
	"mentor-ai-be/internal/config"
	"mentor-ai-be/internal/repository/memory"
	"mentor-ai-be/internal/server"
	"mentor-ai-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			UsageLogFilePath:   filepath.Join(dir, "usage.log"),
			CorsAllowedOrigins: "http://localhost:3001",
			InFlightDriver:     "memory",
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Nats:     config.NatsConfig{Enabled: false},
		Auth:     config.AuthConfig{JwtSecret: "integration-secret", InternalToken: "integration-internal"},
		Chat: config.ChatConfig{
			HistoryWindow:     6,
			CompletionTimeout: 2 * time.Second,
			InFlightTTL:       time.Minute,
			EventTopic:        "CONVERSATION_EVENTS",
		},
	}
}

type appHarness struct {
	app *fiber.App
	cfg *config.Config
}

func newApp(t *testing.T, gateway llm.CompletionGateway) *appHarness {
	t.Helper()
	cfg := testConfig(t)
	container, err := bootstrap.NewContainer(cfg, memory.NewRepositoryFactory(memory.NewStore()), gateway)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	require.NoError(t, container.ConsumerService.Consume(context.Background()))
	assert.Nil(t, container.ProvisioningService)

	return &appHarness{app: server.New(cfg, container).GetApp(), cfg: cfg}
}

func (h *appHarness) call(t *testing.T, method, path string, userId uuid.UUID, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userId != uuid.Nil {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userId.String()}).
			SignedString([]byte(h.cfg.Auth.JwtSecret))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("X-Internal-Token", h.cfg.Auth.InternalToken)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func sessionIdFrom(t *testing.T, raw []byte) string {
	t.Helper()
	var res struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))
	require.NotEmpty(t, res.Data.Id)
	return res.Data.Id
}

func TestConversationLifecycle(t *testing.T) {
	var seen [][]llm.Message
	var mu sync.Mutex
	h := newApp(t, llm.Func(func(ctx context.Context, systemPrompt string, messages []llm.Message) (*llm.Completion, error) {
		mu.Lock()
		seen = append(seen, messages)
		mu.Unlock()
		return &llm.Completion{Content: "Practice out loud.", Model: "fake", TokensUsed: 12, FinishReason: "stop"}, nil
	}))
	userId := uuid.New()

	status, _ := h.call(t, http.MethodGet, "/healthz", uuid.New(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.call(t, http.MethodPut, "/api/internal/quotas/"+userId.String(), uuid.Nil, map[string]interface{}{"plan": "mini"})
	require.Equal(t, http.StatusOK, status)

	status, raw := h.call(t, http.MethodPost, "/api/sessions", userId, map[string]string{"title": "Mock interview"})
	require.Equal(t, http.StatusCreated, status)
	sessionId := sessionIdFrom(t, raw)

	for _, content := range []string{"first question", "second question"} {
		status, raw = h.call(t, http.MethodPost, "/api/sessions/"+sessionId+"/messages", userId, map[string]string{"content": content})
		require.Equal(t, http.StatusOK, status, string(raw))
	}

	mu.Lock()
	require.Len(t, seen, 2)
	// Second call sees the first exchange plus the new user turn.
	assert.Len(t, seen[1], 3)
	assert.Equal(t, "second question", seen[1][2].Content)
	mu.Unlock()

	status, raw = h.call(t, http.MethodGet, "/api/quota", userId, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"messages_used":2`)
	assert.Contains(t, string(raw), `"max_messages":50`)

	status, _ = h.call(t, http.MethodDelete, "/api/sessions/"+sessionId, userId, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, raw = h.call(t, http.MethodGet, "/api/usage", userId, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"session_count":0`)
}

func TestConcurrentSendOnOneSessionConflicts(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	h := newApp(t, llm.Func(func(ctx context.Context, systemPrompt string, messages []llm.Message) (*llm.Completion, error) {
		started <- struct{}{}
		<-release
		return &llm.Completion{Content: "done"}, nil
	}))
	userId := uuid.New()

	status, _ := h.call(t, http.MethodPut, "/api/internal/quotas/"+userId.String(), uuid.Nil, map[string]interface{}{"plan": "mini"})
	require.Equal(t, http.StatusOK, status)
	_, raw := h.call(t, http.MethodPost, "/api/sessions", userId, map[string]string{"title": "Race"})
	sessionId := sessionIdFrom(t, raw)

	done := make(chan int, 1)
	go func() {
		status, _ := h.call(t, http.MethodPost, "/api/sessions/"+sessionId+"/messages", userId, map[string]string{"content": "slow one"})
		done <- status
	}()
	<-started

	status, _ = h.call(t, http.MethodPost, "/api/sessions/"+sessionId+"/messages", userId, map[string]string{"content": "impatient"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.call(t, http.MethodDelete, "/api/sessions/"+sessionId, userId, nil)
	assert.Equal(t, http.StatusConflict, status)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)

	status, raw = h.call(t, http.MethodGet, "/api/quota", userId, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"messages_used":1`)
}
