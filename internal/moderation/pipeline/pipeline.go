package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonokeeton/g4yp1g-bot/internal/common/metrics"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/mute"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/spam"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/stats"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/words"
)

const startReply = "Hi! I'm G4yp1gbot, a Telegram moderation bot.\nI'm currently in development mode."

type AuditPublisher interface {
	PublishAction(ctx context.Context, record models.ActionRecord) error
}

// Pipeline превращает одно входящее сообщение в одно решение и ведёт
// журналы, счётчики и аудит. Побочные эффекты решения выполняет
// транспортный слой.
type Pipeline struct {
	store    *settings.Store
	detector *spam.Detector
	filter   *words.Filter
	muter    *mute.Manager
	counters *stats.Counters
	audit    AuditPublisher
	logger   *slog.Logger
}

func New(
	store *settings.Store,
	detector *spam.Detector,
	filter *words.Filter,
	muter *mute.Manager,
	counters *stats.Counters,
	audit AuditPublisher,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		store:    store,
		detector: detector,
		filter:   filter,
		muter:    muter,
		counters: counters,
		audit:    audit,
		logger:   logger,
	}
}

// HandleMessage применяет проверки в фиксированном порядке: /debug,
// глобальный бан, затем для групповых чатов мьют -> спам -> запрещённые
// слова, затем учёт и ответ для личных чатов.
func (p *Pipeline) HandleMessage(_ context.Context, event *models.MessageEvent) models.Decision {
	if event.Text == "/debug" {
		return p.record(event, models.DebugReply(p.debugPayload(event)))
	}

	if p.counters.IsBanned(event.UserID) {
		return p.record(event, models.Ignore())
	}

	if event.ChatType.IsGroup() {
		if decision, moderated := p.moderateGroupMessage(event); moderated {
			return p.record(event, decision)
		}
	}

	p.counters.TrackMessage(event.UserID)

	if event.ChatType == models.ChatTypePrivate {
		if event.Text == "/start" {
			return p.record(event, models.Reply(startReply))
		}

		return p.record(event, models.EchoReply(event.Text))
	}

	return p.record(event, models.Ignore())
}

// moderateGroupMessage возвращает решение и признак того, что сообщение
// было перехвачено модерацией; чистые сообщения проваливаются в учёт.
func (p *Pipeline) moderateGroupMessage(event *models.MessageEvent) (models.Decision, bool) {
	group := p.store.GetOrCreate(event.ChatID)

	if p.muter.IsMuted(event.UserID, event.ChatID, event.Time) {
		p.logAction(group, event, models.ActionDelete, "muted", group.AppendModerationLog)

		return models.DeleteOnly(), true
	}

	if group.SpamFilterEnabled() {
		if result := p.detector.Check(event.UserID, event.Text, event.Time); result.IsSpam {
			p.muter.Mute(event.UserID, event.ChatID, event.Time)
			p.logAction(group, event, models.ActionMute, "spam: "+result.Reason, group.AppendSpamLog)

			metrics.RecordSpamDetection(result.Reason)
			metrics.RecordMute()

			return models.DeleteAndWarn("spam: " + result.Reason), true
		}
	}

	if group.ModerationEnabled() {
		if result := p.filter.Check(event.ChatID, event.Text); result.IsBanned {
			p.muter.Mute(event.UserID, event.ChatID, event.Time)
			p.logAction(group, event, models.ActionMute, "banned word: "+result.MatchedWord, group.AppendModerationLog)

			metrics.RecordBannedWord(result.MatchedWord)
			metrics.RecordMute()

			return models.DeleteAndWarn("banned word"), true
		}
	}

	return models.Decision{}, false
}

func (p *Pipeline) logAction(
	group *settings.Group,
	event *models.MessageEvent,
	action, reason string,
	appendLog func(models.ActionRecord),
) {
	record := models.ActionRecord{
		GroupID:       event.ChatID,
		UserID:        event.UserID,
		UserFirstName: event.UserFirstName,
		Action:        action,
		Reason:        reason,
		Text:          event.Text,
		Time:          event.Time,
	}

	appendLog(record)

	p.logger.Info("Действие модерации",
		"group_id", record.GroupID,
		"user_id", record.UserID,
		"action", record.Action,
		"reason", record.Reason,
	)

	p.publishAudit(record)
}

// publishAudit отправляет запись в аудит в отдельной горутине: пайплайн
// не блокируется на внешнем I/O, ошибки доставки только логируются.
func (p *Pipeline) publishAudit(record models.ActionRecord) {
	if p.audit == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.audit.PublishAction(ctx, record); err != nil {
			p.logger.Error("Ошибка при публикации события модерации",
				"error", err,
				"group_id", record.GroupID,
				"user_id", record.UserID,
			)
		}
	}()
}

func (p *Pipeline) debugPayload(event *models.MessageEvent) string {
	groups := p.store.List()

	ids := make([]int64, 0, len(groups))
	for _, group := range groups {
		ids = append(ids, group.ID)
	}

	return fmt.Sprintf("debug: user=%d (%s), chat=%d, groups=%v",
		event.UserID, event.UserFirstName, event.ChatID, ids)
}

func (p *Pipeline) record(event *models.MessageEvent, decision models.Decision) models.Decision {
	metrics.RecordMessage(string(event.ChatType), decisionLabel(decision.Kind))

	return decision
}

func decisionLabel(kind models.DecisionKind) string {
	switch kind {
	case models.DecisionDeleteOnly:
		return "delete_only"
	case models.DecisionDeleteAndWarn:
		return "delete_and_warn"
	case models.DecisionEchoReply:
		return "echo"
	case models.DecisionReply:
		return "reply"
	case models.DecisionDebugReply:
		return "debug"
	case models.DecisionIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}
