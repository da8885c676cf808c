package clients

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramClientAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string) error

	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	SetMyCommands(ctx context.Context, commands []BotCommand) error

	GetBot() *tgbotapi.BotAPI
}

type BotCommand struct {
	Command     string
	Description string
}
