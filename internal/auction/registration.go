package auction

import (
	"time"

	"github.com/google/uuid"
)

// BidderID is an opaque chat-platform identity. The engine never
// inspects it beyond equality.
type BidderID string

// Registration is a pending auction-item submission. Immutable once
// accepted; consumed when an auction starts from it.
type Registration struct {
	ID          uuid.UUID
	Item        string
	Owner       BidderID
	StartingBid int64
	Increment   int64
	// Attributes carries descriptive key/value pairs (level, stat
	// block, ...) the engine does not interpret.
	Attributes  map[string]string
	SubmittedAt time.Time
}

func (r Registration) validate() error {
	if r.Item == "" {
		return &ValidationError{Field: "item", Reason: "must not be empty"}
	}
	if r.Owner == "" {
		return &ValidationError{Field: "owner", Reason: "must not be empty"}
	}
	if r.StartingBid < 0 {
		return &ValidationError{Field: "starting_bid", Reason: "must not be negative"}
	}
	if r.Increment <= 0 {
		return &ValidationError{Field: "increment", Reason: "must be positive"}
	}
	return nil
}

// registrationQueue holds pending registrations in arrival order.
// First registered, first auctioned. Not safe for concurrent use; the
// engine serializes access.
type registrationQueue struct {
	pending []Registration
}

func (q *registrationQueue) push(r Registration) {
	q.pending = append(q.pending, r)
}

// pop removes and returns the oldest registration.
func (q *registrationQueue) pop() (Registration, bool) {
	if len(q.pending) == 0 {
		return Registration{}, false
	}
	head := q.pending[0]
	q.pending = q.pending[1:]
	return head, true
}

func (q *registrationQueue) len() int {
	return len(q.pending)
}

// snapshot returns a copy of the queue in arrival order.
func (q *registrationQueue) snapshot() []Registration {
	out := make([]Registration, len(q.pending))
	copy(out, q.pending)
	return out
}
