package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-medicamp/logging"
	"go-medicamp/metrics"
	"go-medicamp/utils"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPQueue publishes jobs to a durable RabbitMQ queue and consumes them in
// Serve. Jobs published while Serve is not connected are dropped.
type AMQPQueue struct {
	url     string
	queue   string
	workers int
	d       *deliverer

	mu  sync.RWMutex
	pub *amqp.Channel
}

// NewAMQPQueue creates an AMQPQueue for the broker at url
func NewAMQPQueue(url, queue string, sender Sender, opts Options) *AMQPQueue {
	opts = opts.withDefaults()
	return &AMQPQueue{
		url:     url,
		queue:   queue,
		workers: opts.Workers,
		d:       newDeliverer(sender, opts),
	}
}

// Notify publishes e in the background
func (q *AMQPQueue) Notify(ctx context.Context, e utils.Email) {
	if !accept(ctx, e) {
		return
	}
	job := Job{Email: e, RequestID: logging.RequestIDFromContext(ctx)}
	go func(job Job) {
		if err := q.publish(job); err != nil {
			metrics.RecordNotification("dropped")
			logging.Error().Err(err).Str("to", job.Email.To).Str("request_id", job.RequestID).Msg("failed to queue email")
		}
	}(job)
}

func (q *AMQPQueue) publish(job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	q.mu.RLock()
	ch := q.pub
	q.mu.RUnlock()
	if ch == nil {
		return errors.New("notification queue not connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return ch.PublishWithContext(ctx,
		"",      // exchange
		q.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Serve connects to the broker and consumes jobs until ctx is cancelled or
// the connection drops. Implements suture.Service, which restarts it after
// a failure.
func (q *AMQPQueue) Serve(ctx context.Context) error {
	conn, err := amqp.Dial(q.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	pub, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open publish channel: %w", err)
	}
	sub, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open consume channel: %w", err)
	}

	if _, err := sub.QueueDeclare(
		q.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", q.queue, err)
	}
	if err := sub.Qos(q.workers, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := sub.Consume(
		q.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", q.queue, err)
	}

	q.setPublisher(pub)
	defer q.setPublisher(nil)
	logging.Info().Str("queue", q.queue).Msg("notification consumer connected")

	var wg sync.WaitGroup
	defer wg.Wait()
	sem := make(chan struct{}, q.workers)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("notification consumer channel closed")
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() { <-sem; wg.Done() }()
				q.handle(ctx, d)
			}(d)
		}
	}
}

func (q *AMQPQueue) handle(ctx context.Context, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logging.Error().Err(err).Msg("discarding malformed notification job")
		_ = d.Nack(false, false)
		return
	}
	if err := q.d.deliver(ctx, job); err != nil && ctx.Err() != nil {
		// shutting down mid-delivery, hand the job back to the broker
		_ = d.Nack(false, true)
		return
	}
	// failed jobs are acknowledged too; the failure is already logged
	_ = d.Ack(false)
}

func (q *AMQPQueue) setPublisher(ch *amqp.Channel) {
	q.mu.Lock()
	q.pub = ch
	q.mu.Unlock()
}

func (q *AMQPQueue) String() string {
	return "notify-amqp-queue"
}
