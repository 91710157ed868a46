package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// CommandSubscriber consumes chat-adapter command subjects from NATS
// JetStream and feeds raw messages into the command loop. Messages are
// acked after the channel hand-off, so backpressure propagates to NATS
// instead of expiring ack deadlines mid-apply.
type CommandSubscriber struct {
	js        jetstream.JetStream
	rawChan   chan<- RawCommand
	log       zerolog.Logger
	consumers []jetstream.ConsumeContext
}

// RawCommand is an undecoded adapter message plus its ack handles.
type RawCommand struct {
	Command  string
	Data     []byte
	Received time.Time
	AckFunc  func()
	NakFunc  func()
}

// SubjectConfig maps a NATS subject to a command name.
type SubjectConfig struct {
	Subject      string
	Command      string
	ConsumerName string
	StreamName   string
}

// DefaultSubjects returns the standard command subject table. One
// subject per command keeps consumer lag visible per command type.
func DefaultSubjects() []SubjectConfig {
	return []SubjectConfig{
		{Subject: "auction.cmd.register", Command: "register", ConsumerName: "auction-register", StreamName: "AUCTION_CMDS"},
		{Subject: "auction.cmd.start", Command: "start", ConsumerName: "auction-start", StreamName: "AUCTION_CMDS"},
		{Subject: "auction.cmd.bid", Command: "bid", ConsumerName: "auction-bid", StreamName: "AUCTION_CMDS"},
		{Subject: "auction.cmd.cancel", Command: "cancel", ConsumerName: "auction-cancel", StreamName: "AUCTION_CMDS"},
	}
}

func NewCommandSubscriber(js jetstream.JetStream, rawChan chan<- RawCommand, log zerolog.Logger) *CommandSubscriber {
	return &CommandSubscriber{
		js:      js,
		rawChan: rawChan,
		log:     log,
	}
}

// Subscribe creates JetStream consumers for all configured subjects.
// Consumers use explicit ACK, max_deliver=5, ack_wait=30s.
func (cs *CommandSubscriber) Subscribe(ctx context.Context, subjects []SubjectConfig) error {
	for _, cfg := range subjects {
		cfg := cfg
		consumer, err := cs.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
			Durable:       cfg.ConsumerName,
			FilterSubject: cfg.Subject,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       30 * time.Second,
			MaxDeliver:    5,
			DeliverPolicy: jetstream.DeliverAllPolicy,
		})
		if err != nil {
			return fmt.Errorf("create consumer %s: %w", cfg.ConsumerName, err)
		}

		consumerContext, err := consumer.Consume(func(msg jetstream.Msg) {
			raw := RawCommand{
				Command:  cfg.Command,
				Data:     msg.Data(),
				Received: time.Now(),
				AckFunc:  func() { msg.Ack() },
				NakFunc:  func() { msg.Nak() },
			}

			select {
			case cs.rawChan <- raw:
			case <-ctx.Done():
				msg.Nak()
			}
		})
		if err != nil {
			return fmt.Errorf("consume %s: %w", cfg.ConsumerName, err)
		}

		cs.consumers = append(cs.consumers, consumerContext)
		cs.log.Info().Str("subject", cfg.Subject).Str("consumer", cfg.ConsumerName).Msg("subscribed")
	}

	return nil
}

// Stop gracefully stops all consumers.
func (cs *CommandSubscriber) Stop() {
	for _, cc := range cs.consumers {
		cc.Stop()
	}
	cs.log.Info().Msg("command subscribers stopped")
}

// EnsureCommandStream creates the inbound command stream if missing.
func EnsureCommandStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "AUCTION_CMDS",
		Subjects:  []string{"auction.cmd.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream AUCTION_CMDS: %w", err)
	}
	return nil
}

// ConnectNATS establishes a NATS connection and returns a JetStream
// context.
func ConnectNATS(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream context: %w", err)
	}

	return nc, js, nil
}
