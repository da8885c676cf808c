package audit

import (
	"context"
	"log/slog"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
)

type Publisher interface {
	PublishAction(ctx context.Context, record models.ActionRecord) error
}

// MultiPublisher рассылает запись во все настроенные приёмники аудита.
// Приёмники независимы: отказ одного не мешает остальным, возвращается
// последняя ошибка.
type MultiPublisher struct {
	publishers []Publisher
	logger     *slog.Logger
}

func NewMultiPublisher(logger *slog.Logger, publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{
		publishers: publishers,
		logger:     logger,
	}
}

func (m *MultiPublisher) PublishAction(ctx context.Context, record models.ActionRecord) error {
	var lastErr error

	for _, publisher := range m.publishers {
		if err := publisher.PublishAction(ctx, record); err != nil {
			m.logger.Error("Ошибка при публикации в приёмник аудита",
				"error", err,
				"group_id", record.GroupID,
			)

			lastErr = err
		}
	}

	return lastErr
}
