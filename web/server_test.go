package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"persona-agent/agent"
	"persona-agent/config"
	"persona-agent/content"
	"persona-agent/index"
	"persona-agent/session"
	"persona-agent/web/middleware"
	"persona-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		ConfidenceThreshold: 5,
		RemoteHistoryTurns:  8,
		TriggerBonus:        20,
		PartialTriggerBonus: 10,
		KeywordBonus:        7,
		ContextBonus:        5,
		SimilarityWeight:    15,
		FlowBonus:           6,
		RecencyPenalty:      0.7,
		DefaultDamping:      0.1,
		RecencyWindow:       3,
		FuzzyThreshold:      0.7,
		SentimentThreshold:  0.2,
		RateLimitPerMinute:  60,
		RateLimitBurstSize:  20,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *session.MemoryStore) {
	t.Helper()
	logger := zap.NewNop()

	catalog, err := content.Load("")
	require.NoError(t, err)
	idx, err := index.New(catalog.IndexTexts(), 0, logger)
	require.NoError(t, err)

	store := session.NewMemoryStore()
	a := agent.NewAgent(cfg, catalog, idx, store, nil, logger)
	srv := NewServer(a, logger, cfg)
	t.Cleanup(srv.limiter.Stop)
	return srv, store
}

func do(t *testing.T, srv *Server, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChatCreatesSessionAndReplies(t *testing.T) {
	srv, store := newTestServer(t, testConfig())
	sid := uuid.NewString()

	w := do(t, srv, http.MethodPost, "/api/chat", sid, `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, sid, w.Header().Get(middleware.SessionHeader))

	resp := decode[types.ChatResponse](t, w)
	assert.Equal(t, sid, resp.SessionID)
	assert.Equal(t, "greeting", resp.MatchedUnitID)
	assert.False(t, resp.UsedRemote)
	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, 1, store.Len())
}

func TestChatIssuesSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	w := do(t, srv, http.MethodPost, "/api/chat", "", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[types.ChatResponse](t, w)
	_, err := uuid.Parse(resp.SessionID)
	assert.NoError(t, err)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookieName+"="+resp.SessionID)
}

func TestChatRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	sid := uuid.NewString()

	tests := []struct {
		name      string
		sessionID string
		body      string
		want      int
	}{
		{"missing message", sid, `{}`, http.StatusBadRequest},
		{"blank message", sid, `{"message":"   "}`, http.StatusBadRequest},
		{"too long", sid, `{"message":"` + strings.Repeat("a", 2001) + `"}`, http.StatusBadRequest},
		{"bad session id", "not-a-uuid", `{"message":"hello"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/chat", tt.sessionID, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHistoryAndReset(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	sid := uuid.NewString()

	w := do(t, srv, http.MethodGet, "/api/history", sid, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, msg := range []string{"hello", "tell me about your life"} {
		w = do(t, srv, http.MethodPost, "/api/chat", sid, `{"message":"`+msg+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/history?format=html", sid, "")
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[types.HistoryResponse](t, w)
	require.Len(t, history.Messages, 4)
	assert.Equal(t, "user", history.Messages[0].Role)
	assert.Equal(t, "hello", history.Messages[0].Content)
	assert.Equal(t, "<p>hello</p>", history.Messages[0].HTML)
	assert.Equal(t, "biography", history.Messages[3].UnitID)

	w = do(t, srv, http.MethodGet, "/api/history", sid, "")
	history = decode[types.HistoryResponse](t, w)
	assert.Empty(t, history.Messages[0].HTML)

	w = do(t, srv, http.MethodPost, "/api/session/reset", sid, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/history", sid, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[types.HistoryResponse](t, w).Messages)
}

func TestCreateSession(t *testing.T) {
	srv, store := newTestServer(t, testConfig())
	sid := uuid.NewString()

	w := do(t, srv, http.MethodPost, "/api/session", sid, "")
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[types.SessionResponse](t, w)
	assert.Equal(t, sid, resp.SessionID)
	assert.Equal(t, 1, store.Len())
}

func TestTopics(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	sid := uuid.NewString()

	w := do(t, srv, http.MethodGet, "/api/topics", sid, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPost, "/api/chat", sid, `{"message":"tell me about your life"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/topics", sid, "")
	require.Equal(t, http.StatusOK, w.Code)
	topics := decode[types.TopicsResponse](t, w)
	require.Len(t, topics.Topics, 1)
	assert.Equal(t, "life", topics.Topics[0].ID)
}

func TestChatRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitBurstSize = 2
	cfg.RateLimitPerMinute = 1
	srv, _ := newTestServer(t, cfg)
	sid := uuid.NewString()

	for i := 0; i < 2; i++ {
		w := do(t, srv, http.MethodPost, "/api/chat", sid, `{"message":"hello"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := do(t, srv, http.MethodPost, "/api/chat", sid, `{"message":"hello"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// Other sessions keep their own budget.
	w = do(t, srv, http.MethodPost, "/api/chat", uuid.NewString(), `{"message":"hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	w := do(t, srv, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["remote_enabled"])

	w = do(t, srv, http.MethodPost, "/api/chat", uuid.NewString(), `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "persona_agent_turns_total")
}

func TestCleanupStaleSessions(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	stale, err := store.Create(ctx, "stale")
	require.NoError(t, err)
	stale.LastActive = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Save(ctx, stale))
	_, err = store.Create(ctx, "fresh")
	require.NoError(t, err)

	cs := NewCleanupService(store, zap.NewNop())
	removed, err := cs.CleanupStaleSessions(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "stale")
	assert.Error(t, err)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestStartSessionCleanupStopsWithContext(t *testing.T) {
	cfg := testConfig()
	cfg.CleanupEnabled = true
	cfg.CleanupInterval = 5 * time.Millisecond
	cfg.SessionRetentionAge = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		StartSessionCleanup(ctx, cfg, NewCleanupService(session.NewMemoryStore(), zap.NewNop()), zap.NewNop())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
