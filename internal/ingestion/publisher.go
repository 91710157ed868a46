package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/event"
	"github.com/jerom68/Auction/internal/observability"
)

// NotificationPublisher drains engine notifications and publishes them
// to NATS for the chat adapter (and any audit consumer) to render.
// Subjects follow the pattern auction.events.{kind}.
type NotificationPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan event.Notification
	log       zerolog.Logger
	metrics   *observability.Metrics
}

func NewNotificationPublisher(
	js jetstream.JetStream,
	inputChan <-chan event.Notification,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *NotificationPublisher {
	return &NotificationPublisher{
		js:        js,
		inputChan: inputChan,
		log:       log,
		metrics:   metrics,
	}
}

// Run starts the publisher loop. Publish failures are non-fatal: the
// notification already reached the audit log sink, and the adapter can
// re-read engine state over HTTP.
func (np *NotificationPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case n, ok := <-np.inputChan:
			if !ok {
				return nil
			}

			if err := np.publish(ctx, n); err != nil {
				np.log.Warn().Err(err).Int64("sequence", n.Sequence).Msg("notification publish failed")
				if np.metrics != nil {
					np.metrics.PublishErrors.Inc()
				}
			}
		}
	}
}

func (np *NotificationPublisher) publish(ctx context.Context, n event.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := fmt.Sprintf("auction.events.%s", n.Kind)
	_, err = np.js.Publish(ctx, subject, data)
	return err
}

// EnsureEventStream creates the outbound notification stream.
func EnsureEventStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "AUCTION_EVENTS",
		Subjects:  []string{"auction.events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream AUCTION_EVENTS: %w", err)
	}
	return nil
}
