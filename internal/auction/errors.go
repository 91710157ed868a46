package auction

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by engine operations. All are recoverable by
// the caller: the adapter surfaces a user-facing message and the engine
// keeps running.
var (
	// ErrAlreadyActive is returned by StartAuction while a session is
	// Open or Closing.
	ErrAlreadyActive = errors.New("an auction is already running")

	// ErrNoRegistrations is returned by StartAuction when the queue is
	// empty.
	ErrNoRegistrations = errors.New("no registrations queued")

	// ErrNoActiveAuction is returned by PlaceBid and CancelAuction when
	// no session is Open or Closing.
	ErrNoActiveAuction = errors.New("no active auction")

	// ErrBidderBarred is returned by PlaceBid for a blacklisted bidder.
	ErrBidderBarred = errors.New("bidder is barred from bidding")
)

// ValidationError reports malformed registration input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid registration: %s %s", e.Field, e.Reason)
}

// BidTooLowError reports a bid below the escalation threshold. Required
// is the minimum amount that would have been accepted.
type BidTooLowError struct {
	Offered  int64
	Required int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid of %d is too low: must be at least %d", e.Offered, e.Required)
}
