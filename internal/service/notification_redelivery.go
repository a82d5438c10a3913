package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/models"
	"github.com/noah-isme/ta-hiring-api/pkg/jobs"
)

// JobTypeStatusNotification identifies queued notification retries.
const JobTypeStatusNotification = "status_notification"

type jobQueue interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(job jobs.Job) error
}

// NotificationRedelivery retries status notifications on a background queue.
type NotificationRedelivery struct {
	notifier StatusNotifier
	queue    jobQueue
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewNotificationRedelivery builds the redelivery worker pool on top of pkg/jobs.
func NewNotificationRedelivery(notifier StatusNotifier, cfg jobs.QueueConfig, metrics *MetricsService) *NotificationRedelivery {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := &NotificationRedelivery{notifier: notifier, metrics: metrics, logger: cfg.Logger}
	cfg.OnGiveUp = r.abandon
	r.queue = jobs.NewQueue("notification-redelivery", r.handle, cfg)
	return r
}

// Start launches the workers.
func (r *NotificationRedelivery) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop drains the workers. Pending retries are dropped.
func (r *NotificationRedelivery) Stop() {
	r.queue.Stop()
}

// Redeliver queues directive for another delivery attempt.
func (r *NotificationRedelivery) Redeliver(directive models.SelectionDirective) error {
	err := r.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeStatusNotification,
		Payload: directive,
	})
	if err != nil {
		r.metrics.RecordRedelivery("dropped")
		return err
	}
	r.metrics.RecordRedelivery("queued")
	return nil
}

func (r *NotificationRedelivery) handle(ctx context.Context, job jobs.Job) error {
	directive, ok := job.Payload.(models.SelectionDirective)
	if !ok {
		r.logger.Error("discarding malformed redelivery job", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	if err := r.notifier.NotifyStatus(ctx, directive); err != nil {
		return fmt.Errorf("redeliver status %s to %s: %w", directive.Status, directive.Username, err)
	}
	r.metrics.RecordRedelivery("delivered")
	r.logger.Info("notification redelivered",
		zap.String("username", directive.Username),
		zap.String("courseCode", directive.CourseCode),
		zap.String("status", string(directive.Status)),
		zap.Int("attempt", job.Attempt+1))
	return nil
}

func (r *NotificationRedelivery) abandon(job jobs.Job, err error) {
	r.metrics.RecordRedelivery("abandoned")
	directive, _ := job.Payload.(models.SelectionDirective)
	r.logger.Error("giving up on notification",
		zap.String("username", directive.Username),
		zap.String("courseCode", directive.CourseCode),
		zap.String("status", string(directive.Status)),
		zap.Error(err))
}
