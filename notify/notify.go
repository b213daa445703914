// Package notify delivers emails outside the request/response cycle.
//
// Handlers call Notify and return immediately. A supervised worker delivers
// each message with bounded exponential backoff behind a circuit breaker on
// the mail provider. Delivery failures are logged and counted, never
// reported to the caller.
package notify

import (
	"context"
	"errors"
	"time"

	"go-medicamp/logging"
	"go-medicamp/metrics"
	"go-medicamp/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Notifier accepts fire-and-forget emails
type Notifier interface {
	Notify(ctx context.Context, e utils.Email)
}

// Sender is the mail provider used by the workers
type Sender interface {
	SendEmail(ctx context.Context, e utils.Email) error
}

// Job is one queued email plus the request it came from
type Job struct {
	Email     utils.Email `json:"email"`
	RequestID string      `json:"requestId,omitempty"`
}

// Options tunes delivery
type Options struct {
	Workers    int
	Buffer     int
	MaxRetries int
	// NewBackOff returns the retry schedule for one job. Defaults to
	// exponential backoff starting at 500ms.
	NewBackOff func() backoff.BackOff
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Buffer < 1 {
		o.Buffer = 64
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.NewBackOff == nil {
		o.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 2 * time.Minute
			return b
		}
	}
	return o
}

// deliverer sends jobs with retry and a shared circuit breaker
type deliverer struct {
	sender  Sender
	opts    Options
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func newDeliverer(sender Sender, opts Options) *deliverer {
	return &deliverer{
		sender: sender,
		opts:   opts,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "mail-provider",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

// deliver sends job.Email and reports the final outcome
func (d *deliverer) deliver(ctx context.Context, job Job) error {
	ctx = logging.ContextWithRequestID(ctx, job.RequestID)
	log := logging.Ctx(ctx)

	op := func() error {
		_, err := d.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, d.sender.SendEmail(ctx, job.Email)
		})
		if errors.Is(err, utils.ErrNoRecipient) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(d.opts.NewBackOff(), uint64(d.opts.MaxRetries)), ctx)
	notifyErr := func(err error, wait time.Duration) {
		log.Debug().Err(err).Dur("retry_in", wait).Str("to", job.Email.To).Msg("email delivery failed, retrying")
	}

	if err := backoff.RetryNotify(op, policy, notifyErr); err != nil {
		metrics.RecordNotification("failed")
		log.Error().Err(err).Str("to", job.Email.To).Str("subject", job.Email.Subject).Msg("failed to send email")
		return err
	}
	metrics.RecordNotification("sent")
	log.Debug().Str("to", job.Email.To).Msg("email sent")
	return nil
}

// accept reports whether e can be queued at all. Emails without a recipient
// are dropped here.
func accept(ctx context.Context, e utils.Email) bool {
	if e.To == "" {
		metrics.RecordNotification("dropped")
		logging.Ctx(ctx).Debug().Str("subject", e.Subject).Msg("email without recipient dropped")
		return false
	}
	return true
}
