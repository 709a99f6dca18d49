package notification

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hyunwoo-p/rinkmate/internal/logger"
)

const QueueName = "push.dispatch"

// Notifier delivers a push event to a user. Implementations must never
// block the caller's business flow: failures are logged and swallowed.
type Notifier interface {
	Send(userID uint, title, body, deepLink string)
}

// AMQPNotifier publishes events to RabbitMQ with a short-lived
// connection per publish. Publish volume here is a handful of messages
// per user action, so connection churn is not a concern and a dropped
// broker never wedges a held connection.
type AMQPNotifier struct {
	url string
}

func NewAMQPNotifier(url string) *AMQPNotifier {
	return &AMQPNotifier{url: url}
}

func (n *AMQPNotifier) Send(userID uint, title, body, deepLink string) {
	event := Event{UserID: userID, Title: title, Body: body, DeepLink: deepLink}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("notification: marshal event for user %d: %v", userID, err)
		return
	}

	conn, err := amqp.DialConfig(n.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		logger.Error("notification: connect to broker: %v", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("notification: open channel: %v", err)
		return
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		logger.Error("notification: declare queue: %v", err)
		return
	}

	err = ch.Publish("", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		logger.Error("notification: publish for user %d: %v", userID, err)
	}
}

// NoopNotifier drops every event. Used when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(userID uint, title, body, deepLink string) {}
