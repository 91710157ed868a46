package event

import (
	"github.com/rs/zerolog"
)

// Sink receives notifications emitted by the engine. Notify must not
// block: the engine calls it while holding the session lock.
type Sink interface {
	Notify(n Notification)
}

// Sinks fans a notification out to each member in order.
type Sinks []Sink

func (s Sinks) Notify(n Notification) {
	for _, sink := range s {
		sink.Notify(n)
	}
}

// LogSink writes every notification to a structured audit log. This is
// the engine-side counterpart of the bot's separate log channel.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(n Notification) {
	evt := s.log.Info().
		Int64("sequence", n.Sequence).
		Str("kind", n.Kind.String()).
		Str("item", n.Session.Item).
		Str("status", n.Session.Status).
		Int64("high_bid", n.Session.HighBid)
	if n.Session.HighBidder != "" {
		evt = evt.Str("high_bidder", n.Session.HighBidder)
	}
	if n.Bid != nil {
		evt = evt.Str("bidder", n.Bid.Bidder).Int64("amount", n.Bid.Amount)
		if n.Bid.Reason != "" {
			evt = evt.Str("reason", n.Bid.Reason)
		}
	}
	if n.Result != nil {
		evt = evt.Str("winner", n.Result.Winner).Int64("winning_bid", n.Result.Amount)
	}
	evt.Msg("auction event")
}

// ChannelSink hands notifications to a buffered channel without
// blocking. Downstream publishers drain the channel; when it is full
// the notification is dropped and onDrop (if set) is invoked, the same
// discipline the outbound publish path applies to slow consumers.
type ChannelSink struct {
	ch     chan Notification
	onDrop func()
}

func NewChannelSink(buffer int, onDrop func()) *ChannelSink {
	return &ChannelSink{
		ch:     make(chan Notification, buffer),
		onDrop: onDrop,
	}
}

func (s *ChannelSink) Notify(n Notification) {
	select {
	case s.ch <- n:
	default:
		if s.onDrop != nil {
			s.onDrop()
		}
	}
}

// C exposes the drain side of the sink.
func (s *ChannelSink) C() <-chan Notification {
	return s.ch
}

// Close closes the underlying channel. Call only after the engine has
// stopped emitting.
func (s *ChannelSink) Close() {
	close(s.ch)
}
