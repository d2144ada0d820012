package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange имя обменника.
type Exchange string

// Queue имя очереди.
type Queue string

// RoutingKey ключ маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeAssessments Exchange = "pathway.assessments"
	ExchangeSessions    Exchange = "pathway.sessions"
	ExchangeDLQ         Exchange = "pathway.dlq"
)

// Queues.
const (
	QueueAssessmentAudit   Queue = "assessments.audit"
	QueueSessionsCompleted Queue = "sessions.completed"
	QueueDLQAudit          Queue = "dlq.audit"
)

// Routing keys совпадают с типами сообщений.
const (
	RoutingKeyAssessmentSaved  RoutingKey = "assessment.saved"
	RoutingKeySessionCompleted RoutingKey = "session.completed"
	RoutingKeyDLQAudit         RoutingKey = "audit"
)

type exchangeDecl struct {
	name Exchange
	kind string
}

type queueDecl struct {
	name Queue
	args amqp.Table
}

type bindingDecl struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
}

// Topology описание обменников, очередей и привязок.
type Topology struct {
	Exchanges []exchangeDecl
	Queues    []queueDecl
	Bindings  []bindingDecl
}

// DefaultTopology топология Pathway.
//
//	pathway.assessments (topic)
//	└── assessments.audit [assessment.saved] → pathway-auditor, DLQ: dlq.audit
//	pathway.sessions (topic)
//	└── sessions.completed [session.completed] → pathway-auditor
//	pathway.dlq (direct)
//	└── dlq.audit [audit]
func DefaultTopology() Topology {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQAudit),
	}

	return Topology{
		Exchanges: []exchangeDecl{
			{ExchangeAssessments, amqp.ExchangeTopic},
			{ExchangeSessions, amqp.ExchangeTopic},
			{ExchangeDLQ, amqp.ExchangeDirect},
		},
		Queues: []queueDecl{
			{QueueAssessmentAudit, dlqArgs},
			{QueueSessionsCompleted, nil},
			{QueueDLQAudit, nil},
		},
		Bindings: []bindingDecl{
			{QueueAssessmentAudit, RoutingKeyAssessmentSaved, ExchangeAssessments},
			{QueueSessionsCompleted, RoutingKeySessionCompleted, ExchangeSessions},
			{QueueDLQAudit, RoutingKeyDLQAudit, ExchangeDLQ},
		},
	}
}

// SetupTopology объявляет топологию Pathway. Повторный вызов безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		return DefaultTopology().Declare(ch)
	})
}

// Declare объявляет обменники, очереди и привязки.
func (t Topology) Declare(ch *amqp.Channel) error {
	for _, ex := range t.Exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	for _, q := range t.Queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	for _, b := range t.Bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
