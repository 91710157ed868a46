package auction

import (
	"time"
)

// Status is the lifecycle state of the current session.
type Status int32

const (
	StatusIdle Status = iota
	StatusOpen
	StatusClosing
	StatusClosed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusOpen:
		return "Open"
	case StatusClosing:
		return "Closing"
	case StatusClosed:
		return "Closed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// active reports whether bids and cancellation are admissible.
func (s Status) active() bool {
	return s == StatusOpen || s == StatusClosing
}

// session is the single running auction. Owned exclusively by the
// engine; every mutation happens under the engine lock.
type session struct {
	reg        Registration
	status     Status
	highBid    int64
	highBidder BidderID
	startedAt  time.Time
	lastBidAt  time.Time
}

// SessionView is a read-only snapshot of the running (or just
// finished) session, handed to adapters and notifications.
type SessionView struct {
	RegistrationID string
	Item           string
	Owner          BidderID
	Status         Status
	StartingBid    int64
	Increment      int64
	HighBid        int64
	HighBidder     BidderID
	Attributes     map[string]string
	StartedAt      time.Time
	LastBidAt      time.Time
}

func (s *session) view() SessionView {
	return SessionView{
		RegistrationID: s.reg.ID.String(),
		Item:           s.reg.Item,
		Owner:          s.reg.Owner,
		Status:         s.status,
		StartingBid:    s.reg.StartingBid,
		Increment:      s.reg.Increment,
		HighBid:        s.highBid,
		HighBidder:     s.highBidder,
		Attributes:     s.reg.Attributes,
		StartedAt:      s.startedAt,
		LastBidAt:      s.lastBidAt,
	}
}

// BidResult is returned by a successful PlaceBid.
type BidResult struct {
	HighBid    int64
	HighBidder BidderID
	PlacedAt   time.Time
}
