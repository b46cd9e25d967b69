package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"torrent-catalog/pkg/config"
	"torrent-catalog/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotificationQueueName = "catalog_notifications"
	NotificationExchange  = "catalog"
)

// Routing keys for published events.
const (
	EventCommentCreated = "comment.created"
	EventAccountBanned  = "account.banned"
)

// Event is one notification addressed to a single account.
type Event struct {
	Type      string                 `json:"type"`
	UserID    string                 `json:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Priority  int                    `json:"priority"`
	CreatedAt time.Time              `json:"created_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func declareTopology(channel *amqp.Channel) error {
	if err := channel.ExchangeDeclare(NotificationExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err := channel.QueueDeclare(NotificationQueueName, true, false, false, false, amqp.Table{
		"x-max-priority": 10,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{EventCommentCreated, EventAccountBanned} {
		if err := channel.QueueBind(NotificationQueueName, key, NotificationExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publish sends event to the notification exchange under its type as routing
// key. Priority is clamped to 0-10.
func (c *Client) Publish(ctx context.Context, event Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.Priority = ClampPriority(event.Priority)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		NotificationExchange,
		event.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Priority:     uint8(event.Priority),
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.CreatedAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s for user %s: %v", event.Type, event.UserID, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s for user %s", event.Type, event.UserID)
	return nil
}

func ClampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return p
}
