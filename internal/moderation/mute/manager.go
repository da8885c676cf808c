package mute

import (
	"time"

	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
)

const Duration = 5 * time.Minute

// Manager выдаёт и проверяет временные мьюты, хранящиеся в записях групп.
type Manager struct {
	store *settings.Store
}

func NewManager(store *settings.Store) *Manager {
	return &Manager{
		store: store,
	}
}

func (m *Manager) IsMuted(userID, groupID int64, now time.Time) bool {
	group, exists := m.store.Get(groupID)
	if !exists {
		return false
	}

	expiry, exists := group.MuteExpiry(userID)
	if !exists {
		return false
	}

	return now.Before(expiry)
}

// Mute устанавливает мьют на Duration от now. Повторный вызов до
// истечения просто сдвигает срок.
func (m *Manager) Mute(userID, groupID int64, now time.Time) time.Time {
	expiry := now.Add(Duration)
	m.store.GetOrCreate(groupID).MuteUntil(userID, expiry)

	return expiry
}

// SweepExpired убирает истёкшие записи во всех группах.
func (m *Manager) SweepExpired(now time.Time) int {
	removed := 0

	for _, group := range m.store.List() {
		removed += group.RemoveExpiredMutes(now)
	}

	return removed
}
