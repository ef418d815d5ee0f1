// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/models"
)

// ErrMailQueueFull is returned by Send when the queue has no free slot.
var ErrMailQueueFull = errors.New("mail queue is full")

// drainTimeout bounds how long queued messages may still be delivered after
// shutdown has been requested.
const drainTimeout = 5 * time.Second

// MailDispatcher decouples request handling from the mail provider. Send
// only enqueues; Run delivers the queue through the wrapped mailer.
type MailDispatcher struct {
	mailer adapter.Mailer
	queue  chan models.Email

	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewMailDispatcher(mailer adapter.Mailer, size int, m *metrics.Metrics, logger *logger.Logger) *MailDispatcher {
	if size < 1 {
		size = 1
	}
	return &MailDispatcher{
		mailer:  mailer,
		queue:   make(chan models.Email, size),
		metrics: m,
		logger:  logger,
	}
}

// Send enqueues email without blocking.
func (d *MailDispatcher) Send(ctx context.Context, email models.Email) error {
	select {
	case d.queue <- email:
		d.metrics.MailQueueDepth(len(d.queue))
		return nil
	default:
		logger.FromContext(ctx).Warn().Str("func", "*MailDispatcher.Send").Str("subject", email.Subject).Msg("mail queue full, message dropped")
		return ErrMailQueueFull
	}
}

// Run delivers queued messages until ctx is done, then gives the remaining
// ones a short grace period.
func (d *MailDispatcher) Run(ctx context.Context) error {
	d.logger.Info().Int("capacity", cap(d.queue)).Msg("mail dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			d.logger.Info().Msg("mail dispatcher stopped")
			return nil
		case email := <-d.queue:
			d.deliver(ctx, email)
		}
	}
}

func (d *MailDispatcher) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	for {
		select {
		case email := <-d.queue:
			d.deliver(ctx, email)
		default:
			return
		}
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, email models.Email) {
	err := d.mailer.Send(ctx, email)
	d.metrics.MailDelivered(err)
	d.metrics.MailQueueDepth(len(d.queue))

	if err != nil {
		d.logger.Err(err).Str("func", "*MailDispatcher.deliver").Str("subject", email.Subject).Msg("error delivering email")
	}
}
