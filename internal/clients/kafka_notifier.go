package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/noah-isme/ta-hiring-api/internal/models"
)

// KafkaNotifierConfig configures the Kafka status publisher.
type KafkaNotifierConfig struct {
	Brokers []string
	Topic   string
	// MaxAttempts defaults to 3.
	MaxAttempts int
	// WriteTimeout bounds each attempt; defaults to 5s.
	WriteTimeout time.Duration
	Observer     Observer
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes status changes to a topic consumed by the notification service.
// Messages are keyed by username so one applicant's events stay ordered.
type KafkaNotifier struct {
	writer      messageWriter
	topic       string
	maxAttempts int
	timeout     time.Duration
	backoff     time.Duration
	observer    Observer
}

// NewKafkaNotifier constructs a synchronous kafka-go writer.
func NewKafkaNotifier(cfg KafkaNotifierConfig) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newKafkaNotifier(w, cfg), nil
}

func newKafkaNotifier(w messageWriter, cfg KafkaNotifierConfig) *KafkaNotifier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &KafkaNotifier{
		writer:      w,
		topic:       cfg.Topic,
		maxAttempts: cfg.MaxAttempts,
		timeout:     cfg.WriteTimeout,
		backoff:     100 * time.Millisecond,
		observer:    cfg.Observer,
	}
}

// NotifyStatus publishes one status change, retrying transient write failures.
func (n *KafkaNotifier) NotifyStatus(ctx context.Context, directive models.SelectionDirective) (err error) {
	start := time.Now()
	defer func() {
		if n.observer != nil {
			n.observer.ObserveRemoteCall("kafka", "status_notification", err, time.Since(start))
		}
	}()

	value, err := json.Marshal(newStatusEvent(directive))
	if err != nil {
		return fmt.Errorf("kafka: marshal status event: %w", err)
	}
	msg := kafka.Message{Key: []byte(directive.Username), Value: value}

	backoff := n.backoff
	var lastErr error
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
		lastErr = n.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if lastErr == nil {
			return nil
		}
		if attempt == n.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("kafka: publish to %s: %v: %w", n.topic, ctx.Err(), ErrUnavailable)
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("kafka: publish to %s failed after %d attempts: %v: %w", n.topic, n.maxAttempts, lastErr, ErrUnavailable)
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	if n == nil || n.writer == nil {
		return nil
	}
	return n.writer.Close()
}
