package app

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/service/notification"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
	"github.com/jwalitptl/hms-api/pkg/messaging/redis"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/worker"
)

// Worker relays outbox events to Redis and turns them into patient emails.
type Worker struct {
	broker    messaging.Broker
	processor *worker.OutboxProcessor
	notifier  *notification.Notifier
}

func NewWorker(cfg *config.Config, repos Repositories, client *goredis.Client, m *metrics.Metrics, l *logger.Logger) (*Worker, error) {
	if client == nil {
		return nil, errors.New("worker requires redis.url")
	}
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}

	broker := redis.NewRedisBroker(client, l.Zerolog())

	processor, err := worker.NewOutboxProcessor(repos.Outbox, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
		MaxFailures:   cfg.Outbox.MaxFailures,
	}, l, m)
	if err != nil {
		return nil, err
	}

	var mailer email.Service
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		l.Warn("smtp.host not set, notifications are logged instead of sent")
		mailer = email.NewLogService(l)
	}

	return &Worker{
		broker:    broker,
		processor: processor,
		notifier:  notification.NewNotifier(broker, repos.Patients, repos.Doctors, mailer, loc, m, l),
	}, nil
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processor.Start(ctx)
	}()

	err := w.notifier.Run(ctx)
	// the processor must not outlive a failed subscription
	cancel()
	wg.Wait()
	return err
}

func (w *Worker) Close() error {
	return w.broker.Close()
}
