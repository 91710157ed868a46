package event

import (
	"time"
)

// Kind discriminates notification payloads.
type Kind int32

const (
	KindUnknown Kind = iota
	KindStarted
	KindBidAccepted
	KindBidRejected
	KindCancelled
	KindNoBids
	KindWon
)

func (k Kind) String() string {
	switch k {
	case KindStarted:
		return "Started"
	case KindBidAccepted:
		return "BidAccepted"
	case KindBidRejected:
		return "BidRejected"
	case KindCancelled:
		return "Cancelled"
	case KindNoBids:
		return "NoBids"
	case KindWon:
		return "Won"
	default:
		return "Unknown"
	}
}

// SessionSnapshot is the session state carried on every notification.
// Attributes are the opaque key/value pairs from the registration; the
// engine never interprets them, the adapter renders them.
type SessionSnapshot struct {
	RegistrationID string            `json:"registration_id"`
	Item           string            `json:"item"`
	Owner          string            `json:"owner"`
	Status         string            `json:"status"`
	StartingBid    int64             `json:"starting_bid"`
	Increment      int64             `json:"increment"`
	HighBid        int64             `json:"high_bid"`
	HighBidder     string            `json:"high_bidder,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// BidSnapshot describes the bid that triggered a BidAccepted or
// BidRejected notification.
type BidSnapshot struct {
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
	// Required is the minimum acceptable amount; set on rejections.
	Required int64  `json:"required,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ResultSnapshot describes the outcome of a closed auction. Owner is
// carried so the adapter can message both parties for trade completion.
type ResultSnapshot struct {
	Winner string `json:"winner"`
	Amount int64  `json:"amount"`
	Owner  string `json:"owner"`
}

// Notification is the structured payload the engine emits on every
// lifecycle transition. Sequence is a monotonic counter assigned by the
// engine; adapters may use it to order renders.
type Notification struct {
	Sequence  int64           `json:"sequence"`
	Kind      Kind            `json:"-"`
	KindName  string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Session   SessionSnapshot `json:"session"`
	Bid       *BidSnapshot    `json:"bid,omitempty"`
	Result    *ResultSnapshot `json:"result,omitempty"`
}
