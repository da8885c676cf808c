package models

import (
	"time"
)

type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
)

func (t ChatType) IsGroup() bool {
	return t == ChatTypeGroup || t == ChatTypeSupergroup
}

// MessageEvent описывает входящее сообщение для пайплайна модерации.
type MessageEvent struct {
	ChatType      ChatType
	ChatID        int64
	MessageID     int64
	UserID        int64
	UserFirstName string
	Text          string
	Time          time.Time
}

type DecisionKind int

const (
	DecisionIgnore DecisionKind = iota
	DecisionDeleteOnly
	DecisionDeleteAndWarn
	DecisionEchoReply
	DecisionReply
	DecisionDebugReply
)

// Decision содержит результат обработки одного сообщения. Побочные
// эффекты (удаление, ответ) выполняет транспортный слой.
type Decision struct {
	Kind   DecisionKind
	Reason string
	Reply  string
}

func Ignore() Decision {
	return Decision{Kind: DecisionIgnore}
}

func DeleteOnly() Decision {
	return Decision{Kind: DecisionDeleteOnly}
}

func DeleteAndWarn(reason string) Decision {
	return Decision{Kind: DecisionDeleteAndWarn, Reason: reason}
}

func EchoReply(text string) Decision {
	return Decision{Kind: DecisionEchoReply, Reply: text}
}

func Reply(text string) Decision {
	return Decision{Kind: DecisionReply, Reply: text}
}

func DebugReply(payload string) Decision {
	return Decision{Kind: DecisionDebugReply, Reply: payload}
}
