package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the direct exchange jobs are published to, routed by
// pipeline name.
const ExchangeName = "imports"

// Message is the body of a queued job.
type Message struct {
	JobID uuid.UUID `json:"job_id"`
}

// Producer publishes queued jobs.
type Producer struct {
	ch     *amqp.Channel
	logger *slog.Logger
	mu     sync.Mutex
}

func NewProducer(conn *amqp.Connection, logger *slog.Logger) (*Producer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("producer: failed to open a channel: %w", err)
	}
	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &Producer{ch: ch, logger: logger}, nil
}

func (p *Producer) Publish(ctx context.Context, job *Job) error {
	body, err := json.Marshal(Message{JobID: job.ID})
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, ExchangeName, job.Pipeline, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("producer: failed to publish job %s: %w", job.ID, err)
	}
	p.logger.Debug("job published", "job_id", job.ID, "pipeline", job.Pipeline)
	return nil
}

func (p *Producer) Close() error {
	return p.ch.Close()
}

// ConsumerConfig describes the work queue the importer reads from.
type ConsumerConfig struct {
	Queue     string
	Pipelines []string
	Prefetch  int
}

// Handler processes one job. A nil error acks the message; an error rejects
// it without requeue.
type Handler func(ctx context.Context, msg Message) error

type Consumer struct {
	ch     *amqp.Channel
	queue  string
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewConsumer declares the exchange and a durable queue bound to every
// configured pipeline.
func NewConsumer(conn *amqp.Connection, cfg ConsumerConfig, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to open a channel: %w", err)
	}
	fail := func(err error) (*Consumer, error) {
		_ = ch.Close()
		return nil, err
	}

	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			return fail(fmt.Errorf("consumer: failed to set QoS: %w", err))
		}
	}
	if err := declareExchange(ch); err != nil {
		return fail(err)
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("consumer: failed to declare queue '%s': %w", cfg.Queue, err))
	}
	for _, p := range cfg.Pipelines {
		if err := ch.QueueBind(q.Name, p, ExchangeName, false, nil); err != nil {
			return fail(fmt.Errorf("consumer: failed to bind queue '%s' to '%s': %w", q.Name, p, err))
		}
	}

	return &Consumer{ch: ch, queue: q.Name, logger: logger}, nil
}

// Run delivers messages to h until ctx is cancelled or the channel closes.
// Each message is handled in its own goroutine, bounded by the prefetch.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to register on queue '%s': %w", c.queue, err)
	}
	c.logger.Info("waiting for jobs", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.wg.Wait()
			return nil
		case d, ok := <-msgs:
			if !ok {
				c.wg.Wait()
				return fmt.Errorf("consumer: deliveries channel closed")
			}
			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()
				c.handle(ctx, d, h)
			}(d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, h Handler) {
	if err := validate(schemaJobMessage, d.Body); err != nil {
		c.logger.Warn("dropping malformed job message", "delivery_tag", d.DeliveryTag, "err", err)
		_ = d.Reject(false)
		return
	}
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		_ = d.Reject(false)
		return
	}

	if err := h(ctx, msg); err != nil {
		c.logger.Error("job handler failed", "job_id", msg.JobID, "err", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	c.wg.Wait()
	return c.ch.Close()
}

func declareExchange(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", ExchangeName, err)
	}
	return nil
}
