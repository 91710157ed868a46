package auction

import (
	"sort"
	"time"
)

// LedgerEntry is a bidder's latest bid within a session.
type LedgerEntry struct {
	Bidder    BidderID
	Amount    int64
	Timestamp time.Time
}

// Ledger maps each bidder to their latest bid for one session. It
// exists to answer leaderboard and winner queries, not as an audit
// trail: earlier bids by the same bidder are overwritten. Not safe for
// concurrent use; the engine serializes access.
type Ledger struct {
	entries map[BidderID]LedgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[BidderID]LedgerEntry)}
}

// Record stores the bidder's latest bid, replacing any earlier one.
func (l *Ledger) Record(bidder BidderID, amount int64, at time.Time) {
	l.entries[bidder] = LedgerEntry{Bidder: bidder, Amount: amount, Timestamp: at}
}

// Empty reports whether no bids were recorded this session.
func (l *Ledger) Empty() bool {
	return len(l.entries) == 0
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Top returns up to n entries ordered by amount descending. Equal
// amounts rank by earliest timestamp, then bidder ID for a stable
// order. n <= 0 yields an empty slice.
func (l *Ledger) Top(n int) []LedgerEntry {
	if n <= 0 {
		return []LedgerEntry{}
	}
	ranked := l.ranked()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Winner returns the highest bid, ties broken by earliest timestamp
// (first bidder to reach the amount wins). ok is false on an empty
// ledger.
func (l *Ledger) Winner() (LedgerEntry, bool) {
	ranked := l.ranked()
	if len(ranked) == 0 {
		return LedgerEntry{}, false
	}
	return ranked[0], true
}

func (l *Ledger) ranked() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Bidder < out[j].Bidder
	})
	return out
}
