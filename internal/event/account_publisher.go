package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"account-service/internal/config"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const AccountEventsQueue = "account_events"

const (
	EventUserRegistered = "user.registered"
	EventRoleAssigned   = "role.assigned"
	EventRoleRevoked    = "role.revoked"
)

type AccountEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	UserID    string         `json:"user_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type RabbitMQConnection struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQConnection(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.Username, cfg.Password, cfg.Host, cfg.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	return &RabbitMQConnection{Conn: conn, Channel: channel}, nil
}

func (c *RabbitMQConnection) Close() {
	if c.Channel != nil {
		c.Channel.Close()
	}
	if c.Conn != nil {
		c.Conn.Close()
	}
}

// AccountEventPublisher pushes account lifecycle events for downstream
// consumers (notifications, audit). Publishing is best-effort: a nil
// publisher or a broker failure must never fail the request that caused
// the event.
type AccountEventPublisher struct {
	conn *RabbitMQConnection
}

func NewAccountEventPublisher(conn *RabbitMQConnection) *AccountEventPublisher {
	return &AccountEventPublisher{conn: conn}
}

func (p *AccountEventPublisher) Publish(ctx context.Context, eventType, userID string, payload map[string]any) error {
	if p == nil || p.conn == nil {
		return nil
	}

	_, err := p.conn.Channel.QueueDeclare(
		AccountEventsQueue, // queue name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	event := AccountEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal account event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                 // exchange
		AccountEventsQueue, // routing key (queue name)
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish account event: %w", err)
	}

	slog.Info("Account event published", "queue", AccountEventsQueue, "type", eventType, "user_id", userID)

	return nil
}
