package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonokeeton/g4yp1g-bot/internal/api/handlers"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/stats"
	"github.com/jonokeeton/g4yp1g-bot/pkg"
)

type fakeCache struct {
	mu      sync.Mutex
	payload []byte
}

func (c *fakeCache) Get(_ context.Context) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.payload == nil {
		return nil, false
	}

	return c.payload, true
}

func (c *fakeCache) Set(_ context.Context, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = payload
}

func (c *fakeCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = nil
}

func newTestMux(store *settings.Store, counters *stats.Counters, cache handlers.GroupListCache) *http.ServeMux {
	aggregator := stats.NewAggregator(counters, store)
	handler := handlers.NewDashboardHandler(store, aggregator, cache, pkg.NewLogger(io.Discard))

	mux := http.NewServeMux()
	handler.Register(mux)

	return mux
}

func TestDashboardHandler_ListGroups_Empty(t *testing.T) {
	mux := newTestMux(settings.NewStore(), stats.NewCounters(), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var groups []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Empty(t, groups)
}

func TestDashboardHandler_ListGroups_ReturnsSnapshots(t *testing.T) {
	store := settings.NewStore()
	store.GetOrCreate(100)
	store.GetOrCreate(200)

	mux := newTestMux(store, stats.NewCounters(), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var groups []struct {
		ID               int64    `json:"id"`
		EnableSpamFilter bool     `json:"enableSpamFilter"`
		BannedWords      []string `json:"bannedWords"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))

	require.Len(t, groups, 2)
	assert.Equal(t, int64(100), groups[0].ID)
	assert.Equal(t, int64(200), groups[1].ID)
	assert.True(t, groups[0].EnableSpamFilter)
	assert.Equal(t, []string{"spam", "scam", "viagra", "casino"}, groups[0].BannedWords)
}

func TestDashboardHandler_PatchGroupSettings(t *testing.T) {
	store := settings.NewStore()
	mux := newTestMux(store, stats.NewCounters(), nil)

	body := `{"enableSpamFilter": false, "bannedWords": ["FOO"], "unknownField": 42}`

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups/100/settings", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		ID               int64    `json:"id"`
		EnableSpamFilter bool     `json:"enableSpamFilter"`
		EnableModeration bool     `json:"enableModeration"`
		BannedWords      []string `json:"bannedWords"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, int64(100), result.ID)
	assert.False(t, result.EnableSpamFilter)
	assert.True(t, result.EnableModeration)
	assert.Equal(t, []string{"foo"}, result.BannedWords)

	// Группа создана лениво самим патчем.
	assert.Equal(t, 1, store.Count())
}

func TestDashboardHandler_PatchGroupSettings_Idempotent(t *testing.T) {
	store := settings.NewStore()
	mux := newTestMux(store, stats.NewCounters(), nil)

	body := `{"bannedWords": ["foo", "bar"]}`

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups/100/settings", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	snapshot := store.GetOrCreate(100).Snapshot()
	assert.Equal(t, []string{"foo", "bar"}, snapshot.BannedWords)
}

func TestDashboardHandler_PatchGroupSettings_InvalidID(t *testing.T) {
	mux := newTestMux(settings.NewStore(), stats.NewCounters(), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups/abc/settings", strings.NewReader("{}")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler_PatchGroupSettings_InvalidJSON(t *testing.T) {
	mux := newTestMux(settings.NewStore(), stats.NewCounters(), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups/100/settings", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler_GetStats(t *testing.T) {
	store := settings.NewStore()
	counters := stats.NewCounters()

	counters.TrackMessage(1)
	counters.TrackMessage(2)
	store.GetOrCreate(100)

	mux := newTestMux(store, counters, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		TotalUsers   int   `json:"totalUsers"`
		MessageCount int64 `json:"messageCount"`
		ActiveUsers  int   `json:"activeUsers"`
		Groups       int   `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, 2, result.TotalUsers)
	assert.Equal(t, int64(2), result.MessageCount)
	assert.Equal(t, 2, result.ActiveUsers)
	assert.Equal(t, 1, result.Groups)
}

func TestDashboardHandler_HealthCheck(t *testing.T) {
	store := settings.NewStore()
	store.GetOrCreate(100)

	mux := newTestMux(store, stats.NewCounters(), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Status        string `json:"status"`
		GroupCount    int    `json:"groupCount"`
		UptimeSeconds int64  `json:"uptimeSeconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 1, result.GroupCount)
	assert.GreaterOrEqual(t, result.UptimeSeconds, int64(0))
}

func TestDashboardHandler_ListGroups_UsesCache(t *testing.T) {
	store := settings.NewStore()
	store.GetOrCreate(100)

	cache := &fakeCache{}
	mux := newTestMux(store, stats.NewCounters(), cache)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Ответ закэширован, следующая группа не видна до инвалидации.
	store.GetOrCreate(200)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	var groups []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Len(t, groups, 1)

	// Патч инвалидирует кэш.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/groups/100/settings", strings.NewReader("{}")))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Len(t, groups, 2)
}
