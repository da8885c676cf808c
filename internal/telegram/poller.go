package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonokeeton/g4yp1g-bot/internal/common/metrics"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/clients"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/mute"
)

type MessagePipeline interface {
	HandleMessage(ctx context.Context, event *models.MessageEvent) models.Decision
}

// Poller читает обновления Telegram и выполняет побочные эффекты
// решений пайплайна.
type Poller struct {
	telegramClient clients.TelegramClientAPI
	pipeline       MessagePipeline
	logger         *slog.Logger
	updatesChan    tgbotapi.UpdatesChannel
	stopChan       chan struct{}
}

func NewPoller(telegramClient clients.TelegramClientAPI, pipeline MessagePipeline, logger *slog.Logger) *Poller {
	return &Poller{
		telegramClient: telegramClient,
		pipeline:       pipeline,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

func (p *Poller) Start() {
	p.logger.Info("Запуск Telegram поллера")

	bot := p.telegramClient.GetBot()
	if bot == nil {
		p.logger.Error("Не удалось получить доступ к API бота")
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	p.updatesChan = bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-p.stopChan:
				p.logger.Info("Получен сигнал остановки поллера")
				return
			case update := <-p.updatesChan:
				p.processUpdate(&update)
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.logger.Info("Остановка Telegram поллера")
	close(p.stopChan)
}

func (p *Poller) processUpdate(update *tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	message := update.Message

	event := &models.MessageEvent{
		ChatType:      models.ChatType(message.Chat.Type),
		ChatID:        message.Chat.ID,
		MessageID:     int64(message.MessageID),
		UserID:        message.From.ID,
		UserFirstName: message.From.FirstName,
		Text:          message.Text,
		Time:          messageTime(message),
	}

	p.logger.Info("Получено сообщение",
		"chat_id", event.ChatID,
		"chat_type", string(event.ChatType),
		"user_id", event.UserID,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	decision := p.pipeline.HandleMessage(ctx, event)
	p.executeDecision(ctx, event, decision)
}

func (p *Poller) executeDecision(ctx context.Context, event *models.MessageEvent, decision models.Decision) {
	switch decision.Kind {
	case models.DecisionIgnore:

	case models.DecisionDeleteOnly:
		p.deleteMessage(ctx, event)

	case models.DecisionDeleteAndWarn:
		p.deleteMessage(ctx, event)
		p.sendReply(ctx, event.ChatID, warnText(event.UserFirstName, decision.Reason))

	case models.DecisionEchoReply:
		p.sendReply(ctx, event.ChatID, "Echo: "+decision.Reply)

	case models.DecisionReply, models.DecisionDebugReply:
		p.sendReply(ctx, event.ChatID, decision.Reply)
	}
}

// Ошибка удаления не фатальна: сообщение могло быть уже удалено
// или у бота нет прав.
func (p *Poller) deleteMessage(ctx context.Context, event *models.MessageEvent) {
	if err := p.telegramClient.DeleteMessage(ctx, event.ChatID, int(event.MessageID)); err != nil {
		p.logger.Warn("Не удалось удалить сообщение",
			"error", err,
			"chat_id", event.ChatID,
			"message_id", event.MessageID,
		)

		return
	}

	metrics.RecordDeletedMessage()
}

func (p *Poller) sendReply(ctx context.Context, chatID int64, text string) {
	if err := p.telegramClient.SendMessage(ctx, chatID, text); err != nil {
		p.logger.Error("Ошибка при отправке ответа",
			"error", err,
			"chat_id", chatID,
		)
	}
}

func warnText(firstName, reason string) string {
	return fmt.Sprintf("⚠️ %s, your message was removed (%s). You are muted for %d minutes.",
		firstName, reason, int(mute.Duration.Minutes()))
}

func messageTime(message *tgbotapi.Message) time.Time {
	if message.Date > 0 {
		return time.Unix(int64(message.Date), 0)
	}

	return time.Now()
}
