package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/errors"
	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
)

// KafkaPublisher публикует выполненные действия модерации в Kafka.
// Недоставленные сообщения уходят в DLQ; для пайплайна публикация
// всегда fire-and-forget.
type KafkaPublisher struct {
	producer    *kafka.Writer
	dlqProducer *kafka.Writer
	logger      *slog.Logger
	topic       string
	dlqTopic    string
}

type actionMessage struct {
	GroupID       int64     `json:"groupId"`
	UserID        int64     `json:"userId"`
	UserFirstName string    `json:"userFirstName"`
	Action        string    `json:"action"`
	Reason        string    `json:"reason"`
	Text          string    `json:"text"`
	Time          time.Time `json:"time"`
}

func NewKafkaPublisher(brokers []string, topic, dlqTopic string, logger *slog.Logger) *KafkaPublisher {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	dlqProducer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &KafkaPublisher{
		producer:    producer,
		dlqProducer: dlqProducer,
		logger:      logger,
		topic:       topic,
		dlqTopic:    dlqTopic,
	}
}

func (p *KafkaPublisher) PublishAction(ctx context.Context, record models.ActionRecord) error {
	message := actionMessage{
		GroupID:       record.GroupID,
		UserID:        record.UserID,
		UserFirstName: record.UserFirstName,
		Action:        record.Action,
		Reason:        record.Reason,
		Text:          record.Text,
		Time:          record.Time,
	}

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации сообщения: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", record.GroupID)),
		Value: value,
		Time:  record.Time,
	}

	if err := p.producer.WriteMessages(ctx, kafkaMessage); err != nil {
		p.logger.Error("Ошибка при отправке события в Kafka",
			"error", err,
			"topic", p.topic,
			"group_id", record.GroupID,
		)

		return p.sendToDLQ(ctx, kafkaMessage)
	}

	return nil
}

func (p *KafkaPublisher) sendToDLQ(ctx context.Context, message kafka.Message) error {
	if err := p.dlqProducer.WriteMessages(ctx, message); err != nil {
		p.logger.Error("Ошибка при отправке события в DLQ",
			"error", err,
			"topic", p.dlqTopic,
		)

		return &errors.ErrPublishFailed{Topic: p.dlqTopic, Cause: err}
	}

	p.logger.Warn("Событие отправлено в DLQ",
		"topic", p.dlqTopic,
	)

	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return err
	}

	return p.dlqProducer.Close()
}
