package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/myst-ext/myst-ext-points/internal/points"
)

// WorksheetRecorded is published after a worksheet lands in the gradebook.
type WorksheetRecorded struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	ContentHash string                 `json:"content_hash"`
	GrandTotal  int                    `json:"grand_total"`
	Categories  []points.CategoryTotal `json:"categories"`
	RecordedAt  time.Time              `json:"recorded_at"`
}

// Publisher sends gradebook events to RabbitMQ.
type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	log      *slog.Logger
}

// NewPublisher dials the broker and declares a durable direct exchange
// with a bound queue.
func NewPublisher(url, exchange, queue string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		log:      log,
	}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishWorksheetRecorded publishes one event, retrying transient
// failures with backoff.
func (p *Publisher) PublishWorksheetRecorded(ctx context.Context, ev WorksheetRecorded) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(Backoff(attempt - 1)):
			}
		}
		if lastErr = p.publish(ctx, body); lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		p.log.Warn("event publish failed", "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("publish after %d attempts: %w", MaxAttempts, lastErr)
}

func (p *Publisher) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
