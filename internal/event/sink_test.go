package event_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/event"
)

func TestChannelSinkDropsWhenFull(t *testing.T) {
	drops := 0
	sink := event.NewChannelSink(2, func() { drops++ })

	sink.Notify(event.Notification{Sequence: 1})
	sink.Notify(event.Notification{Sequence: 2})
	sink.Notify(event.Notification{Sequence: 3})

	if drops != 1 {
		t.Fatalf("drops = %d, want 1", drops)
	}

	// The buffered notifications survive in order.
	if n := <-sink.C(); n.Sequence != 1 {
		t.Fatalf("first = %d, want 1", n.Sequence)
	}
	if n := <-sink.C(); n.Sequence != 2 {
		t.Fatalf("second = %d, want 2", n.Sequence)
	}

	// Room again after draining.
	sink.Notify(event.Notification{Sequence: 4})
	if n := <-sink.C(); n.Sequence != 4 {
		t.Fatalf("got %d, want 4", n.Sequence)
	}
	if drops != 1 {
		t.Fatalf("drops = %d, want still 1", drops)
	}
}

func TestChannelSinkNilOnDrop(t *testing.T) {
	sink := event.NewChannelSink(0, nil)
	// Must not panic with a full channel and no callback.
	sink.Notify(event.Notification{Sequence: 1})
}

type countingSink struct{ n int }

func (c *countingSink) Notify(event.Notification) { c.n++ }

func TestSinksFanOut(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	sinks := event.Sinks{a, b, event.NewLogSink(zerolog.Nop())}

	sinks.Notify(event.Notification{Sequence: 1})
	sinks.Notify(event.Notification{Sequence: 2})

	if a.n != 2 || b.n != 2 {
		t.Fatalf("fan-out counts = %d, %d; want 2, 2", a.n, b.n)
	}
}

func TestKindNames(t *testing.T) {
	kinds := map[event.Kind]string{
		event.KindStarted:     "Started",
		event.KindBidAccepted: "BidAccepted",
		event.KindBidRejected: "BidRejected",
		event.KindCancelled:   "Cancelled",
		event.KindNoBids:      "NoBids",
		event.KindWon:         "Won",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
