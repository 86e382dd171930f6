package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotifyExchange = "content.exchange"

	// BlogPublishedQueue feeds the notification service that emails
	// subscribers about newly published blogs.
	BlogPublishedQueue      = "content.blog_published"
	BlogPublishedRoutingKey = "content.blog_published"
)

// BlogPublishedMessage announces one blog transitioned to published.
type BlogPublishedMessage struct {
	BlogID      string `json:"blog_id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"` // RFC3339, UTC
	Timestamp   int64  `json:"timestamp"`
}

// NotifyService publishes content lifecycle events for downstream
// consumers (email, push). This service only produces; consuming is the
// notification service's concern.
type NotifyService struct {
	channel *amqp.Channel
}

func InitNotifyService(channel *amqp.Channel) *NotifyService {
	service := &NotifyService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		NotifyExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Notify exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		BlogPublishedQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Blog Published queue: " + err.Error())
	}

	err = channel.QueueBind(
		BlogPublishedQueue,
		BlogPublishedRoutingKey,
		NotifyExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Blog Published queue: " + err.Error())
	}

	return service
}

// PublishBlogPublished announces a blog publication to the notify queue.
func (s *NotifyService) PublishBlogPublished(ctx context.Context, msg BlogPublishedMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		NotifyExchange,
		BlogPublishedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
