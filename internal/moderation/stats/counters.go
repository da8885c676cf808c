package stats

import (
	"sync"
)

// Counters хранит глобальные счётчики процесса. Пишет в них только
// пайплайн, остальные компоненты читают.
type Counters struct {
	messageCount int64
	activeUsers  map[int64]struct{}
	bannedUsers  map[int64]struct{}
	mu           sync.RWMutex
}

func NewCounters() *Counters {
	return &Counters{
		activeUsers: make(map[int64]struct{}),
		bannedUsers: make(map[int64]struct{}),
	}
}

func (c *Counters) TrackMessage(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messageCount++
	c.activeUsers[userID] = struct{}{}
}

// IsBanned проверяет глобальный бан. Механизм сохранён, но ни один
// код не пополняет bannedUsers.
func (c *Counters) IsBanned(userID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, banned := c.bannedUsers[userID]

	return banned
}

func (c *Counters) MessageCount() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.messageCount
}

func (c *Counters) ActiveUserCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.activeUsers)
}

func (c *Counters) BannedUserCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.bannedUsers)
}
