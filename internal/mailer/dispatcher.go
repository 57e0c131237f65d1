// SPDX-License-Identifier: MIT

package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/contactbook/contactd/internal/metrics"
)

// job is one queued outbound message.
type job struct {
	to      string
	subject string
	body    string
}

// Dispatcher queues outbound mail and delivers it from a background worker,
// decoupling HTTP handlers from SMTP latency. Deliveries are rate limited to
// avoid tripping relay abuse thresholds.
type Dispatcher struct {
	sender  Sender
	logger  zerolog.Logger
	jobs    chan job
	limiter *rate.Limiter

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
	closed  bool
	mu      sync.Mutex
}

// NewDispatcher creates a dispatcher with the given queue depth.
func NewDispatcher(sender Sender, queueDepth int, logger zerolog.Logger) *Dispatcher {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	return &Dispatcher{
		sender: sender,
		logger: logger,
		jobs:   make(chan job, queueDepth),
		// one mail per second, small burst
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// Start launches the delivery worker. Safe to call once.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.started = true
	d.wg.Add(1)
	go d.run(ctx)
}

// Enqueue queues a message for delivery. It never blocks; when the queue is
// full or the dispatcher is closed the message is dropped and counted, since
// verification mail can be re-requested by logging in again.
func (d *Dispatcher) Enqueue(to, subject, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		metrics.VerificationMails.WithLabelValues("dropped").Inc()
		d.logger.Warn().Str("to", to).Msg("mail dispatcher closed, dropping message")
		return
	}
	select {
	case d.jobs <- job{to: to, subject: subject, body: body}:
	default:
		metrics.VerificationMails.WithLabelValues("dropped").Inc()
		d.logger.Warn().Str("to", to).Msg("mail queue full, dropping message")
	}
}

// Close stops the worker after draining queued work. Jobs enqueued before
// Close is called are still delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-d.jobs:
			if !ok {
				return
			}
			if err := d.limiter.Wait(ctx); err != nil {
				return
			}
			sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := d.sender.Send(sendCtx, j.to, j.subject, j.body)
			cancel()
			if err != nil {
				metrics.VerificationMails.WithLabelValues("failure").Inc()
				d.logger.Error().Err(err).Str("to", j.to).Msg("mail delivery failed")
				continue
			}
			metrics.VerificationMails.WithLabelValues("success").Inc()
			d.logger.Info().Str("to", j.to).Str("subject", j.subject).Msg("mail delivered")
		}
	}
}
