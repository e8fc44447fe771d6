package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"campus-crowd-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the workers need.
type SubscriptionStore interface {
	FindLocationByID(ctx context.Context, id string) (*model.Location, error)
	SubscriptionsForLocation(ctx context.Context, locationID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Job announces a new crowd report at a location.
type Job struct {
	LocationID string
	CrowdLevel model.CrowdLevel
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
	sent    *prometheus.CounterVec
}

// NewWorkerPool creates a new worker pool. A nil webpushOptions disables
// sending; dispatched jobs are then dropped.
func NewWorkerPool(size int, store SubscriptionStore, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*16),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// WithCounter records each send attempt on counter, labelled by outcome.
func (wp *WorkerPool) WithCounter(counter *prometheus.CounterVec) *WorkerPool {
	wp.sent = counter
	return wp
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.logger.Debug("processing notification job",
				zap.Int("worker", id), zap.String("location_id", job.LocationID))
			wp.notifyLocation(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a job without blocking. It reports false when sending is
// disabled or the queue is full.
func (wp *WorkerPool) Dispatch(job Job) bool {
	if wp.webpush == nil {
		return false
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.logger.Warn("notification queue full, dropping job", zap.String("location_id", job.LocationID))
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// notifyLocation sends the report to every subscriber of the job's location.
func (wp *WorkerPool) notifyLocation(ctx context.Context, job Job) {
	subscriptions, err := wp.store.SubscriptionsForLocation(ctx, job.LocationID)
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions",
			zap.String("location_id", job.LocationID), zap.Error(err))
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	label := job.LocationID
	if loc, err := wp.store.FindLocationByID(ctx, job.LocationID); err != nil {
		wp.logger.Warn("failed to fetch location name",
			zap.String("location_id", job.LocationID), zap.Error(err))
	} else if loc.Name != "" {
		label = loc.Name
	}

	message := Message(label, job.CrowdLevel)
	wp.logger.Info("sending notifications",
		zap.String("location_id", job.LocationID), zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// Message is the notification text for a new report.
func Message(locationLabel string, level model.CrowdLevel) string {
	return fmt.Sprintf("%s: new crowd report (%s)", locationLabel, level)
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.count("error")
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.count("expired")
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription",
				zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return
	}
	wp.count("sent")
}

func (wp *WorkerPool) count(outcome string) {
	if wp.sent != nil {
		wp.sent.WithLabelValues(outcome).Inc()
	}
}
