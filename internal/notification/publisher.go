package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
)

// Config настройки публикации событий
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Publisher переносит события из outbox в Kafka.
// Топик равен типу события, ключ равен ID агрегата, поэтому события одного
// бронирования попадают в одну партицию и сохраняют порядок.
type Publisher struct {
	outboxRepo OutboxRepository
	txManager  TransactionManager
	writer     MessageWriter
	metrics    Metrics
	logger     Logger
	tracer     trace.Tracer

	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
}

// NewPublisher создает публикатор. metrics может быть nil
func NewPublisher(
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	writer MessageWriter,
	metrics Metrics,
	logger Logger,
	cfg Config,
) *Publisher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Publisher{
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		writer:       writer,
		metrics:      metrics,
		logger:       logger,
		tracer:       otel.Tracer("notification"),
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// NewKafkaWriter создает writer для списка брокеров через запятую
func NewKafkaWriter(brokers string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(SplitBrokers(brokers)...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// SplitBrokers разбирает "host1:9092, host2:9092" в список адресов
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Run публикует события до отмены контекста
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("Run: outbox publisher started, poll_interval=%s, batch_size=%d", p.pollInterval, p.batchSize)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Run: outbox publisher stopped")
			return
		case <-ticker.C:
			// Публикуем, пока пачки полные, чтобы не ждать тик на каждом бэклоге
			for {
				n, err := p.PublishBatch(ctx)
				if err != nil {
					p.logger.Error("Run: failed to publish outbox batch: %v", err)
					break
				}
				if n < p.batchSize {
					break
				}
			}
		}
	}
}

// PublishBatch публикует одну пачку событий и возвращает их количество.
// Если запись в Kafka не удалась, транзакция откатывается и события останутся
// неопубликованными до следующей попытки (доставка at-least-once).
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	ctx, span := p.tracer.Start(ctx, "notification.PublishBatch")
	defer span.End()

	var published []*domain.OutboxEvent
	err := p.txManager.Do(ctx, func(txCtx context.Context) error {
		events, err := p.outboxRepo.FetchUnpublished(txCtx, p.batchSize)
		if err != nil {
			return fmt.Errorf("fetch unpublished: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(events))
		ids := make([]int64, 0, len(events))
		for _, event := range events {
			msgs = append(msgs, p.toMessage(txCtx, event))
			ids = append(ids, event.ID)
		}

		if err := p.writer.WriteMessages(txCtx, msgs...); err != nil {
			return fmt.Errorf("write messages: %w", err)
		}
		if err := p.outboxRepo.MarkPublished(txCtx, ids, p.now()); err != nil {
			return fmt.Errorf("mark published: %w", err)
		}

		published = events
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	span.SetAttributes(attribute.Int("outbox.published", len(published)))
	p.recordPublished(published)
	if len(published) > 0 {
		p.logger.Info("PublishBatch: published %d events", len(published))
	}
	return len(published), nil
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) toMessage(ctx context.Context, event *domain.OutboxEvent) kafka.Message {
	headers := []kafka.Header{
		{Key: headerEventID, Value: []byte(event.EventID)},
		{Key: headerEventType, Value: []byte(event.EventType)},
		{Key: headerAggregateType, Value: []byte(event.AggregateType)},
	}
	return kafka.Message{
		Topic:   event.EventType,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: injectTraceHeaders(ctx, headers),
		Time:    event.CreatedAt,
	}
}

func (p *Publisher) recordPublished(events []*domain.OutboxEvent) {
	if p.metrics == nil || len(events) == 0 {
		return
	}
	byType := make(map[string]int)
	for _, event := range events {
		byType[event.EventType]++
	}
	for eventType, n := range byType {
		p.metrics.AddOutboxPublished(eventType, n)
	}
}
