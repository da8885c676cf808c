package clients

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/clients"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/errors"
)

type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewTelegramClient(token string, logger *slog.Logger) clients.TelegramClientAPI {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Ошибка при создании Telegram клиента", "error", err)
	}

	return &TelegramClient{
		bot:    bot,
		logger: logger,
	}
}

// SetBaseURL устанавливает базовый URL для API Telegram (используется в тестах).
func (c *TelegramClient) SetBaseURL(url string) {
	if c.bot != nil {
		c.bot.SetAPIEndpoint(url)
	}
}

func (c *TelegramClient) SendMessage(_ context.Context, chatID int64, text string) error {
	if c.bot == nil {
		return &errors.ErrTelegramNotInitialized{}
	}

	msg := tgbotapi.NewMessage(chatID, text)

	_, err := c.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения: %w", err)
	}

	return nil
}

func (c *TelegramClient) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if c.bot == nil {
		return &errors.ErrTelegramNotInitialized{}
	}

	deleteConfig := tgbotapi.NewDeleteMessage(chatID, messageID)

	_, err := c.bot.Request(deleteConfig)
	if err != nil {
		return fmt.Errorf("ошибка при удалении сообщения: %w", err)
	}

	return nil
}

func (c *TelegramClient) SetMyCommands(_ context.Context, commands []clients.BotCommand) error {
	if c.bot == nil {
		return &errors.ErrTelegramNotInitialized{}
	}

	botAPICommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botAPICommands = append(botAPICommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	setCommandsConfig := tgbotapi.NewSetMyCommands(botAPICommands...)

	_, err := c.bot.Request(setCommandsConfig)
	if err != nil {
		return fmt.Errorf("ошибка при установке команд бота: %w", err)
	}

	return nil
}

func (c *TelegramClient) GetBot() *tgbotapi.BotAPI {
	return c.bot
}
