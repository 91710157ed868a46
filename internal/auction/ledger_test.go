package auction_test

import (
	"testing"
	"time"

	"github.com/jerom68/Auction/internal/auction"
)

func TestLedgerKeepsLatestPerBidder(t *testing.T) {
	l := auction.NewLedger()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	l.Record("alice", 110, base)
	l.Record("alice", 130, base.Add(time.Second))

	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
	top := l.Top(5)
	if top[0].Amount != 130 {
		t.Fatalf("amount = %d, want latest bid 130", top[0].Amount)
	}
}

func TestLedgerTopOrdering(t *testing.T) {
	l := auction.NewLedger()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	l.Record("alice", 130, base.Add(2*time.Second))
	l.Record("bob", 150, base.Add(3*time.Second))
	l.Record("carol", 120, base.Add(time.Second))

	top := l.Top(2)
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].Bidder != "bob" || top[1].Bidder != "alice" {
		t.Fatalf("order = %s, %s; want bob, alice", top[0].Bidder, top[1].Bidder)
	}

	if got := l.Top(0); len(got) != 0 {
		t.Fatalf("Top(0) = %v, want empty", got)
	}
}

func TestLedgerWinnerTieBreaks(t *testing.T) {
	l := auction.NewLedger()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Equal amounts: whoever reached it first wins.
	l.Record("late", 150, base.Add(5*time.Second))
	l.Record("early", 150, base.Add(time.Second))

	winner, ok := l.Winner()
	if !ok {
		t.Fatal("winner expected")
	}
	if winner.Bidder != "early" {
		t.Fatalf("winner = %s, want early", winner.Bidder)
	}

	// Equal amount and timestamp: bidder ID decides, stably.
	l2 := auction.NewLedger()
	l2.Record("zeb", 100, base)
	l2.Record("amy", 100, base)
	winner, _ = l2.Winner()
	if winner.Bidder != "amy" {
		t.Fatalf("winner = %s, want amy", winner.Bidder)
	}
}

func TestLedgerEmpty(t *testing.T) {
	l := auction.NewLedger()
	if !l.Empty() {
		t.Fatal("new ledger should be empty")
	}
	if _, ok := l.Winner(); ok {
		t.Fatal("empty ledger should have no winner")
	}
	l.Record("alice", 110, time.Now())
	if l.Empty() {
		t.Fatal("ledger with a bid is not empty")
	}
}
