package models

import (
	"time"
)

// GroupSettings описывает конфигурацию и состояние модерации одной группы.
// Запись создаётся лениво при первом обращении и живёт до конца процесса.
type GroupSettings struct {
	EnableVerification bool
	EnableSpamFilter   bool
	EnableModeration   bool
	BannedWords        []string
	MutedUsers         map[int64]time.Time
	VerifiedUsers      map[int64]struct{}
	SpamLog            []ActionRecord
	ModerationLog      []ActionRecord
}

// ActionRecord фиксирует одно выполненное действие модерации.
type ActionRecord struct {
	GroupID       int64
	UserID        int64
	UserFirstName string
	Action        string
	Reason        string
	Text          string
	Time          time.Time
}

const (
	ActionDelete = "delete"
	ActionMute   = "mute"
	ActionWarn   = "warn"
)

// GroupSettingsPatch частично обновляет настройки группы: nil-поле
// означает «не менять», присланные списки заменяются целиком.
type GroupSettingsPatch struct {
	EnableVerification *bool     `json:"enableVerification"`
	EnableSpamFilter   *bool     `json:"enableSpamFilter"`
	EnableModeration   *bool     `json:"enableModeration"`
	BannedWords        *[]string `json:"bannedWords"`
}

type GroupSnapshot struct {
	ID                 int64
	EnableVerification bool
	EnableSpamFilter   bool
	EnableModeration   bool
	BannedWords        []string
	MutedUsers         map[int64]time.Time
	VerifiedUsers      []int64
	SpamLog            []ActionRecord
	ModerationLog      []ActionRecord
}
