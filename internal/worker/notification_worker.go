package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/notify"
	"github.com/spec-kit/volunteer-hub/internal/queue"
	"github.com/spec-kit/volunteer-hub/internal/repository"
)

const dequeueTimeout = 5 * time.Second

// EmailProcessor drains the email queue through a Mailer and records every attempt.
type EmailProcessor struct {
	queue   *queue.Queue
	mailer  notify.Mailer
	logs    repository.EmailLogRepository
	from    string
	backoff time.Duration
	poll    time.Duration
	logger  *zap.Logger
}

// NewEmailProcessor creates the processor. logs may be nil when no store is configured.
func NewEmailProcessor(q *queue.Queue, mailer notify.Mailer, logs repository.EmailLogRepository, cfg config.NotificationConfig, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{
		queue:   q,
		mailer:  mailer,
		logs:    logs,
		from:    cfg.EmailFrom,
		backoff: cfg.Backoff(),
		poll:    dequeueTimeout,
		logger:  logger,
	}
}

// Process delivers one job and records the outcome.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := job.Email()
	if err != nil {
		return err
	}
	msg := notify.FromPayload(payload)

	sendErr := p.mailer.Send(ctx, p.from, msg)
	p.record(ctx, msg, job.Attempt+1, sendErr)
	if sendErr != nil {
		return sendErr
	}
	p.logger.Info("email delivered", zap.String("job_id", job.ID), zap.String("kind", msg.Kind))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			sleep(ctx, p.backoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if _, reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			sleep(ctx, p.backoff)
		}
	}
}

// RunPool runs n copies of the loop and returns once ctx is done and all have exited.
func (p *EmailProcessor) RunPool(ctx context.Context, n int) error {
	if n <= 0 {
		n = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			p.Run(gctx)
			return nil
		})
	}
	return g.Wait()
}

func (p *EmailProcessor) record(ctx context.Context, msg notify.Message, attempt int, sendErr error) {
	if p.logs == nil {
		return
	}
	entry := &domain.EmailLog{
		Kind:           msg.Kind,
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Status:         domain.EmailLogSent,
		Attempt:        attempt,
	}
	if sendErr != nil {
		text := sendErr.Error()
		entry.Status = domain.EmailLogFailed
		entry.ErrorMessage = &text
	}
	if err := p.logs.Create(ctx, entry); err != nil {
		p.logger.Warn("email log write failed", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
