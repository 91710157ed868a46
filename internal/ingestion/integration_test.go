package ingestion_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/auction"
	"github.com/jerom68/Auction/internal/event"
	"github.com/jerom68/Auction/internal/ingestion"
	"github.com/jerom68/Auction/internal/testutil"
)

// TestCommandPipeline drives the full NATS path: publish a command,
// consume it, apply it to a live engine, and observe the outbound
// notification stream. Requires a JetStream-enabled NATS server.
func TestCommandPipeline(t *testing.T) {
	testutil.RequireIntegration(t)

	log := zerolog.Nop()
	nc, js, err := ingestion.ConnectNATS(testutil.TestNATSURL(), log)
	if err != nil {
		t.Fatalf("nats connect: %v", err)
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ingestion.EnsureCommandStream(ctx, js); err != nil {
		t.Fatalf("ensure command stream: %v", err)
	}
	if err := ingestion.EnsureEventStream(ctx, js); err != nil {
		t.Fatalf("ensure event stream: %v", err)
	}

	sink := event.NewChannelSink(64, nil)
	engine := auction.NewEngine(
		auction.Config{Policy: auction.PolicyQuietPeriod, Countdown: time.Minute},
		clock.NewClock(),
		sink,
		log,
		nil,
	)
	defer engine.Stop()

	rawChan := make(chan ingestion.RawCommand, 64)
	subscriber := ingestion.NewCommandSubscriber(js, rawChan, log)
	if err := subscriber.Subscribe(ctx, ingestion.DefaultSubjects()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subscriber.Stop()

	go ingestion.CommandLoop(ctx, rawChan, engine, log, nil)

	publisher := ingestion.NewNotificationPublisher(js, sink.C(), log, nil)
	go publisher.Run(ctx)

	reg := testutil.Registration()
	payload, _ := json.Marshal(map[string]any{
		"item":         reg.Item,
		"owner":        string(reg.Owner),
		"starting_bid": reg.StartingBid,
		"increment":    reg.Increment,
	})
	if _, err := js.Publish(ctx, "auction.cmd.register", payload); err != nil {
		t.Fatalf("publish register: %v", err)
	}

	testutil.WaitFor(t, 10*time.Second, func() bool {
		return len(engine.PendingRegistrations()) == 1
	})

	if _, err := js.Publish(ctx, "auction.cmd.start", []byte(`{"operator":"mod-1"}`)); err != nil {
		t.Fatalf("publish start: %v", err)
	}
	testutil.WaitFor(t, 10*time.Second, func() bool {
		_, ok := engine.Session()
		return ok
	})

	if _, err := js.Publish(ctx, "auction.cmd.bid", []byte(`{"bidder":"alice","amount":110}`)); err != nil {
		t.Fatalf("publish bid: %v", err)
	}
	testutil.WaitFor(t, 10*time.Second, func() bool {
		view, ok := engine.Session()
		return ok && view.HighBid == 110
	})
}
