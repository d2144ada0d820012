package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPermanent помечает ошибку, после которой повтор бесполезен.
// Такое сообщение сразу уходит в DLQ.
var ErrPermanent = errors.New("permanent failure")

// Handler обрабатывает одно сообщение. Ошибка означает nack.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery доставленное сообщение.
type Delivery struct {
	Message     Message
	Redelivered bool
}

// Consumer читает очередь RabbitMQ и вызывает Handler.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    Queue
	handler  Handler
	prefetch int
}

// ConsumerConfig настройки Consumer.
type ConsumerConfig struct {
	Queue    Queue
	Handler  Handler
	Prefetch int
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		logger:   logger.With("queue", cfg.Queue),
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Run читает очередь до отмены ctx. После разрыва соединения ждёт
// переподключения и подписывается заново.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("failed to subscribe", "error", err)
			if err := c.awaitReconnect(ctx); err != nil {
				return err
			}
			continue
		}

		c.logger.Info("consumer started")

		if err := c.drain(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, waiting for reconnect")
			if err := c.awaitReconnect(ctx); err != nil {
				return err
			}
		}
	}
}

func (c *Consumer) awaitReconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.conn.ReconnectNotify():
		return nil
	}
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.queue), // queue
		"",              // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	return deliveries, nil
}

func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.settle(raw, c.process(ctx, raw.Body, raw.Redelivered))
		}
	}
}

// outcome что сделать с сообщением после обработки.
type outcome int

const (
	outcomeAck outcome = iota
	outcomeRequeue
	outcomeDeadLetter
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeRequeue:
		return "requeue"
	default:
		return "dead_letter"
	}
}

// process разбирает тело и вызывает обработчик. Битое сообщение и
// ErrPermanent уходят в DLQ; прочие ошибки повторяются один раз.
func (c *Consumer) process(ctx context.Context, body []byte, redelivered bool) outcome {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.Error("failed to unmarshal message", "error", err, "body", string(body))
		return outcomeDeadLetter
	}

	log := c.logger.With("message_id", msg.ID, "type", msg.Type)
	log.Debug("received message")

	err := c.handler(ctx, &Delivery{Message: msg, Redelivered: redelivered})
	if err == nil {
		return outcomeAck
	}

	result := outcomeRequeue
	if errors.Is(err, ErrPermanent) || redelivered {
		result = outcomeDeadLetter
	}
	log.Error("handler failed", "error", err, "outcome", result)
	return result
}

func (c *Consumer) settle(raw amqp.Delivery, result outcome) {
	var err error
	switch result {
	case outcomeAck:
		err = raw.Ack(false)
	case outcomeRequeue:
		err = raw.Nack(false, true)
	default:
		err = raw.Nack(false, false)
	}
	if err != nil {
		c.logger.Warn("failed to settle delivery", "outcome", result, "error", err)
	}
}

// ParsePayload декодирует payload сообщения в T.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T
	if len(msg.Payload) == 0 {
		return result, fmt.Errorf("%w: empty payload", ErrPermanent)
	}
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		return result, fmt.Errorf("%w: unmarshal payload: %v", ErrPermanent, err)
	}
	return result, nil
}
