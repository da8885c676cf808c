package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/stats"
)

// GroupListCache кэширует сериализованный ответ /api/groups для
// частых опросов дашборда. Может отсутствовать.
type GroupListCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, payload []byte)
	Invalidate(ctx context.Context)
}

// DashboardHandler обслуживает management API внешнего дашборда.
// Аутентификации нет, лишние поля в настройках игнорируются.
type DashboardHandler struct {
	store      *settings.Store
	aggregator *stats.Aggregator
	cache      GroupListCache
	logger     *slog.Logger
	startedAt  time.Time
}

func NewDashboardHandler(
	store *settings.Store,
	aggregator *stats.Aggregator,
	cache GroupListCache,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		store:      store,
		aggregator: aggregator,
		cache:      cache,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/groups", h.ListGroups)
	mux.HandleFunc("POST /api/groups/{id}/settings", h.PatchGroupSettings)
	mux.HandleFunc("GET /api/stats", h.GetStats)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

type actionRecordResponse struct {
	UserID        int64     `json:"userId"`
	UserFirstName string    `json:"userFirstName"`
	Action        string    `json:"action"`
	Reason        string    `json:"reason"`
	Text          string    `json:"text"`
	Time          time.Time `json:"time"`
}

type groupResponse struct {
	ID                 int64                  `json:"id"`
	EnableVerification bool                   `json:"enableVerification"`
	EnableSpamFilter   bool                   `json:"enableSpamFilter"`
	EnableModeration   bool                   `json:"enableModeration"`
	BannedWords        []string               `json:"bannedWords"`
	MutedUsers         map[int64]time.Time    `json:"mutedUsers"`
	VerifiedUsers      []int64                `json:"verifiedUsers"`
	SpamLog            []actionRecordResponse `json:"spamLog"`
	ModerationLog      []actionRecordResponse `json:"moderationLog"`
}

type statsResponse struct {
	TotalUsers   int   `json:"totalUsers"`
	MessageCount int64 `json:"messageCount"`
	ActiveUsers  int   `json:"activeUsers"`
	Groups       int   `json:"groups"`
}

type healthResponse struct {
	Status        string `json:"status"`
	GroupCount    int    `json:"groupCount"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (h *DashboardHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		if payload, ok := h.cache.Get(ctx); ok {
			writeRawJSON(w, http.StatusOK, payload)
			return
		}
	}

	groups := h.aggregator.ListGroups()

	response := make([]groupResponse, 0, len(groups))
	for i := range groups {
		response = append(response, toGroupResponse(&groups[i]))
	}

	payload, err := json.Marshal(response)
	if err != nil {
		h.logger.Error("Ошибка при сериализации списка групп", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, payload)
	}

	writeRawJSON(w, http.StatusOK, payload)
}

func (h *DashboardHandler) PatchGroupSettings(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var patch models.GroupSettingsPatch

	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	group := h.store.GetOrCreate(groupID)
	group.ApplyPatch(&patch)

	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}

	h.logger.Info("Настройки группы обновлены",
		"group_id", groupID,
	)

	snapshot := group.Snapshot()
	writeJSON(w, http.StatusOK, toGroupResponse(&snapshot))
}

func (h *DashboardHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.aggregator.Snapshot()

	writeJSON(w, http.StatusOK, statsResponse{
		TotalUsers:   snapshot.ActiveUsers,
		MessageCount: snapshot.MessageCount,
		ActiveUsers:  snapshot.ActiveUsers,
		Groups:       snapshot.Groups,
	})
}

func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		GroupCount:    h.store.Count(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

func toGroupResponse(snapshot *models.GroupSnapshot) groupResponse {
	response := groupResponse{
		ID:                 snapshot.ID,
		EnableVerification: snapshot.EnableVerification,
		EnableSpamFilter:   snapshot.EnableSpamFilter,
		EnableModeration:   snapshot.EnableModeration,
		BannedWords:        snapshot.BannedWords,
		MutedUsers:         snapshot.MutedUsers,
		VerifiedUsers:      snapshot.VerifiedUsers,
		SpamLog:            make([]actionRecordResponse, 0, len(snapshot.SpamLog)),
		ModerationLog:      make([]actionRecordResponse, 0, len(snapshot.ModerationLog)),
	}

	for _, record := range snapshot.SpamLog {
		response.SpamLog = append(response.SpamLog, toActionResponse(record))
	}

	for _, record := range snapshot.ModerationLog {
		response.ModerationLog = append(response.ModerationLog, toActionResponse(record))
	}

	return response
}

func toActionResponse(record models.ActionRecord) actionRecordResponse {
	return actionRecordResponse{
		UserID:        record.UserID,
		UserFirstName: record.UserFirstName,
		Action:        record.Action,
		Reason:        record.Reason,
		Text:          record.Text,
		Time:          record.Time,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, _ = w.Write(payload)
}
