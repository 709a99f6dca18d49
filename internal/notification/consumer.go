package notification

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/hyunwoo-p/rinkmate/internal/logger"
)

// Consumer drains push.dispatch and records each event as a
// Notification row. Actual device delivery (APNs/FCM) is out of scope;
// the consumer is the system-of-record end of the queue contract.
type Consumer struct {
	url string
	db  *gorm.DB
}

func NewConsumer(url string, db *gorm.DB) *Consumer {
	return &Consumer{url: url, db: db}
}

// Run blocks until ctx is done, reconnecting with backoff whenever the
// broker connection drops.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		if err := c.consume(ctx); err != nil {
			logger.Warn("notification consumer: %v, reconnecting in %s", err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return err
	}

	deliveries, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	logger.Info("notification consumer: connected, waiting for events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return amqp.ErrClosed
			}
			c.handle(d)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery) {
	var event Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logger.Error("notification consumer: bad payload, dropping: %v", err)
		_ = d.Nack(false, false)
		return
	}

	row := Notification{
		UserID:   event.UserID,
		Title:    event.Title,
		Body:     event.Body,
		DeepLink: event.DeepLink,
	}
	if err := c.db.Create(&row).Error; err != nil {
		logger.Error("notification consumer: persist event for user %d: %v", event.UserID, err)
		_ = d.Nack(false, true)
		return
	}

	logger.Info("push to user %d: %s", event.UserID, event.Title)
	_ = d.Ack(false)
}
