package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nrw/pkg/config"
	"nrw/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange       = "nrw.events"
	ModerationQueueName  = "moderation_events"
	ChatNotifyQueueName  = "chat_notifications"
	ModerationRoutingKey = "post_moderated"
	ChatNotifyRoutingKey = "chat_message"
)

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

	err = channel.ExchangeDeclare(
		EventsExchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	for queueName, routingKey := range map[string]string{
		ModerationQueueName: ModerationRoutingKey,
		ChatNotifyQueueName: ChatNotifyRoutingKey,
	} {
		_, err = channel.QueueDeclare(
			queueName,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
		}

		err = channel.QueueBind(queueName, routingKey, EventsExchange, false, nil)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue %s: %w", queueName, err)
		}
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
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

// PublishModerationEvent announces a review decision so downstream consumers
// (feed cache invalidation, notifications) can react.
func (c *Client) PublishModerationEvent(ctx context.Context, postID, authorID, status string) error {
	return c.publish(ctx, ModerationRoutingKey, map[string]interface{}{
		"post_id":   postID,
		"author_id": authorID,
		"status":    status,
		"at":        time.Now().UTC().Format(time.RFC3339),
	})
}

// PublishChatNotification queues a delivery task for a new direct message.
func (c *Client) PublishChatNotification(ctx context.Context, chatID, messageID, senderID, recipientID string) error {
	return c.publish(ctx, ChatNotifyRoutingKey, map[string]interface{}{
		"chat_id":      chatID,
		"message_id":   messageID,
		"sender_id":    senderID,
		"recipient_id": recipientID,
		"at":           time.Now().UTC().Format(time.RFC3339),
	})
}

func (c *Client) publish(ctx context.Context, routingKey string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		EventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}

	return nil
}
