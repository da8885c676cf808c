package stats

import (
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
)

type Snapshot struct {
	MessageCount int64
	ActiveUsers  int
	BannedUsers  int
	Groups       int
}

// Aggregator отдаёт read-only проекции счётчиков и состояния групп.
type Aggregator struct {
	counters *Counters
	store    *settings.Store
}

func NewAggregator(counters *Counters, store *settings.Store) *Aggregator {
	return &Aggregator{
		counters: counters,
		store:    store,
	}
}

func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		MessageCount: a.counters.MessageCount(),
		ActiveUsers:  a.counters.ActiveUserCount(),
		BannedUsers:  a.counters.BannedUserCount(),
		Groups:       a.store.Count(),
	}
}

func (a *Aggregator) GroupDetail(groupID int64) (models.GroupSnapshot, bool) {
	group, exists := a.store.Get(groupID)
	if !exists {
		return models.GroupSnapshot{}, false
	}

	return group.Snapshot(), true
}

func (a *Aggregator) ListGroups() []models.GroupSnapshot {
	groups := a.store.List()

	snapshots := make([]models.GroupSnapshot, 0, len(groups))
	for _, group := range groups {
		snapshots = append(snapshots, group.Snapshot())
	}

	return snapshots
}
