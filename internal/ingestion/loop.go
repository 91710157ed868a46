package ingestion

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/auction"
	"github.com/jerom68/Auction/internal/observability"
)

// CommandLoop drains raw adapter messages, decodes them, and applies
// them to the engine one at a time. Engine rejections (too-low bids,
// start with nothing queued) are terminal for that message: the
// rejection already surfaced through the notification stream, so the
// message is acked, never redelivered.
func CommandLoop(
	ctx context.Context,
	rawChan <-chan RawCommand,
	engine *auction.Engine,
	log zerolog.Logger,
	metrics *observability.Metrics,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-rawChan:
			if !ok {
				return
			}

			if metrics != nil {
				metrics.CommandsReceived.WithLabelValues(raw.Command).Inc()
			}

			cmd, err := ParseCommand(raw.Command, raw.Data)
			if err != nil {
				log.Warn().Err(err).Str("command", raw.Command).Msg("command parse failed")
				if metrics != nil {
					metrics.CommandErrors.WithLabelValues(raw.Command, "parse").Inc()
				}
				// Ack malformed messages to avoid a redelivery loop.
				raw.AckFunc()
				continue
			}

			if err := apply(engine, cmd); err != nil {
				log.Info().Err(err).Str("command", raw.Command).Msg("command rejected")
				if metrics != nil {
					metrics.CommandErrors.WithLabelValues(raw.Command, rejectReason(err)).Inc()
				}
			}
			raw.AckFunc()
		}
	}
}

func apply(engine *auction.Engine, cmd Command) error {
	switch c := cmd.(type) {
	case *RegisterCommand:
		_, err := engine.Register(auction.Registration{
			Item:        c.Item,
			Owner:       c.Owner,
			StartingBid: c.StartingBid,
			Increment:   c.Increment,
			Attributes:  c.Attributes,
		})
		return err
	case *StartCommand:
		_, err := engine.StartAuction()
		return err
	case *BidCommand:
		_, err := engine.PlaceBid(c.Bidder, c.Amount)
		return err
	case *CancelCommand:
		return engine.CancelAuction()
	default:
		return errors.New("unhandled command type")
	}
}

func rejectReason(err error) string {
	var validationErr *auction.ValidationError
	var tooLow *auction.BidTooLowError
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &tooLow):
		return "bid_too_low"
	case errors.Is(err, auction.ErrAlreadyActive):
		return "already_active"
	case errors.Is(err, auction.ErrNoRegistrations):
		return "no_registrations"
	case errors.Is(err, auction.ErrNoActiveAuction):
		return "no_active_auction"
	case errors.Is(err, auction.ErrBidderBarred):
		return "barred"
	default:
		return "other"
	}
}
