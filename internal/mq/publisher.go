package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Pathway/internal/domain"
)

// MessageType тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeAssessmentSaved  MessageType = "assessment.saved"
	MessageTypeSessionCompleted MessageType = "session.completed"
)

// Message конверт сообщения.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// AssessmentSavedPayload опросник создан, изменён или опубликован.
type AssessmentSavedPayload struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	Version      int       `json:"version"`
	Status       string    `json:"status"`
}

// SessionCompletedPayload респондент дошёл до конца опросника.
type SessionCompletedPayload struct {
	SessionID         uuid.UUID `json:"session_id"`
	AssessmentID      uuid.UUID `json:"assessment_id"`
	AssessmentVersion int       `json:"assessment_version"`
	Steps             int       `json:"steps"`
	DurationMS        int64     `json:"duration_ms"`
}

// NewMessage собирает конверт с новым ID.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher публикует события Pathway в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish отправляет сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,              // mandatory
			false,              // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// AssessmentSaved публикует assessment.saved. Потребитель: pathway-auditor.
func (p *Publisher) AssessmentSaved(ctx context.Context, a *domain.Assessment) error {
	msg, err := NewMessage(MessageTypeAssessmentSaved, AssessmentSavedFrom(a))
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeAssessments, RoutingKeyAssessmentSaved, msg)
}

// SessionCompleted публикует session.completed.
func (p *Publisher) SessionCompleted(ctx context.Context, s *domain.Session) error {
	msg, err := NewMessage(MessageTypeSessionCompleted, SessionCompletedFrom(s))
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeSessions, RoutingKeySessionCompleted, msg)
}

// AssessmentSavedFrom строит payload по опроснику.
func AssessmentSavedFrom(a *domain.Assessment) AssessmentSavedPayload {
	return AssessmentSavedPayload{
		AssessmentID: a.ID,
		Version:      a.Version,
		Status:       string(a.Status),
	}
}

// SessionCompletedFrom строит payload по завершённой сессии.
func SessionCompletedFrom(s *domain.Session) SessionCompletedPayload {
	p := SessionCompletedPayload{
		SessionID:         s.ID,
		AssessmentID:      s.AssessmentID,
		AssessmentVersion: s.AssessmentVersion,
		Steps:             len(s.History) + 1,
	}
	if s.CompletedAt != nil {
		p.DurationMS = s.CompletedAt.Sub(s.CreatedAt).Milliseconds()
	}
	return p
}
