package settings

import (
	"strings"
	"sync"
	"time"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
)

// maxLogEntries ограничивает журналы группы последними записями.
const maxLogEntries = 100

func defaultBannedWords() []string {
	return []string{"spam", "scam", "viagra", "casino"}
}

// Group хранит запись одной группы. Операции над записью сериализуются
// её собственным мьютексом, поэтому разные группы не блокируют друг друга.
type Group struct {
	ID int64

	mu       sync.Mutex
	settings models.GroupSettings
}

type Store struct {
	groups map[int64]*Group
	order  []int64
	mu     sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		groups: make(map[int64]*Group),
	}
}

// GetOrCreate возвращает запись группы, создавая её с настройками по
// умолчанию при первом обращении. Повторные вызовы с тем же id
// возвращают тот же самый объект.
func (s *Store) GetOrCreate(groupID int64) *Group {
	s.mu.RLock()
	group, exists := s.groups[groupID]
	s.mu.RUnlock()

	if exists {
		return group
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if group, exists := s.groups[groupID]; exists {
		return group
	}

	group = &Group{
		ID: groupID,
		settings: models.GroupSettings{
			EnableVerification: false,
			EnableSpamFilter:   true,
			EnableModeration:   true,
			BannedWords:        defaultBannedWords(),
			MutedUsers:         make(map[int64]time.Time),
			VerifiedUsers:      make(map[int64]struct{}),
		},
	}

	s.groups[groupID] = group
	s.order = append(s.order, groupID)

	return group
}

func (s *Store) Get(groupID int64) (*Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, exists := s.groups[groupID]

	return group, exists
}

// List возвращает группы в порядке их создания.
func (s *Store) List() []*Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*Group, 0, len(s.order))
	for _, id := range s.order {
		groups = append(groups, s.groups[id])
	}

	return groups
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.groups)
}

// ApplyPatch заменяет присланные поля целиком; не присланные остаются
// как есть. Список запрещённых слов нормализуется в нижний регистр.
func (g *Group) ApplyPatch(patch *models.GroupSettingsPatch) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if patch.EnableVerification != nil {
		g.settings.EnableVerification = *patch.EnableVerification
	}

	if patch.EnableSpamFilter != nil {
		g.settings.EnableSpamFilter = *patch.EnableSpamFilter
	}

	if patch.EnableModeration != nil {
		g.settings.EnableModeration = *patch.EnableModeration
	}

	if patch.BannedWords != nil {
		words := make([]string, 0, len(*patch.BannedWords))
		for _, word := range *patch.BannedWords {
			words = append(words, strings.ToLower(word))
		}

		g.settings.BannedWords = words
	}
}

func (g *Group) SpamFilterEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.settings.EnableSpamFilter
}

func (g *Group) ModerationEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.settings.EnableModeration
}

func (g *Group) BannedWords() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	words := make([]string, len(g.settings.BannedWords))
	copy(words, g.settings.BannedWords)

	return words
}

func (g *Group) MuteUntil(userID int64, expiry time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.settings.MutedUsers[userID] = expiry
}

func (g *Group) MuteExpiry(userID int64) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, exists := g.settings.MutedUsers[userID]

	return expiry, exists
}

// RemoveExpiredMutes удаляет записи, чей срок уже прошёл. Срок
// перепроверяется под блокировкой, поэтому продлённый мьют не будет
// удалён устаревшей уборкой.
func (g *Group) RemoveExpiredMutes(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0

	for userID, expiry := range g.settings.MutedUsers {
		if !now.Before(expiry) {
			delete(g.settings.MutedUsers, userID)
			removed++
		}
	}

	return removed
}

func (g *Group) AppendSpamLog(record models.ActionRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.settings.SpamLog = appendCapped(g.settings.SpamLog, record)
}

func (g *Group) AppendModerationLog(record models.ActionRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.settings.ModerationLog = appendCapped(g.settings.ModerationLog, record)
}

func appendCapped(log []models.ActionRecord, record models.ActionRecord) []models.ActionRecord {
	log = append(log, record)
	if len(log) > maxLogEntries {
		log = log[len(log)-maxLogEntries:]
	}

	return log
}

func (g *Group) Snapshot() models.GroupSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := models.GroupSnapshot{
		ID:                 g.ID,
		EnableVerification: g.settings.EnableVerification,
		EnableSpamFilter:   g.settings.EnableSpamFilter,
		EnableModeration:   g.settings.EnableModeration,
		BannedWords:        make([]string, len(g.settings.BannedWords)),
		MutedUsers:         make(map[int64]time.Time, len(g.settings.MutedUsers)),
		VerifiedUsers:      make([]int64, 0, len(g.settings.VerifiedUsers)),
		SpamLog:            make([]models.ActionRecord, len(g.settings.SpamLog)),
		ModerationLog:      make([]models.ActionRecord, len(g.settings.ModerationLog)),
	}

	copy(snapshot.BannedWords, g.settings.BannedWords)
	copy(snapshot.SpamLog, g.settings.SpamLog)
	copy(snapshot.ModerationLog, g.settings.ModerationLog)

	for userID, expiry := range g.settings.MutedUsers {
		snapshot.MutedUsers[userID] = expiry
	}

	for userID := range g.settings.VerifiedUsers {
		snapshot.VerifiedUsers = append(snapshot.VerifiedUsers, userID)
	}

	return snapshot
}
