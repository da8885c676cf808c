package clients

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonokeeton/g4yp1g-bot/internal/common/httputil"
	"github.com/jonokeeton/g4yp1g-bot/internal/config"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/errors"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
)

// WebhookNotifier дублирует действия модерации на webhook дашборда.
// Доставка best effort: ретраи и circuit breaker внутри клиента,
// итоговая ошибка только логируется вызывающей стороной.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

type webhookActionPayload struct {
	GroupID       int64     `json:"groupId"`
	UserID        int64     `json:"userId"`
	UserFirstName string    `json:"userFirstName"`
	Action        string    `json:"action"`
	Reason        string    `json:"reason"`
	Text          string    `json:"text"`
	Time          time.Time `json:"time"`
}

func NewWebhookNotifier(url string, cfg *config.Config, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		client: httputil.CreateResilientHTTPClient(cfg, logger, "dashboard_webhook"),
		url:    url,
		logger: logger,
	}
}

func (n *WebhookNotifier) PublishAction(ctx context.Context, record models.ActionRecord) error {
	payload := webhookActionPayload{
		GroupID:       record.GroupID,
		UserID:        record.UserID,
		UserFirstName: record.UserFirstName,
		Action:        record.Action,
		Reason:        record.Reason,
		Text:          record.Text,
		Time:          record.Time,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.url)

	if err != nil {
		return err
	}

	if resp.IsError() {
		return &errors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return nil
}
