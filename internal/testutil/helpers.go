package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/jerom68/Auction/internal/auction"
)

// TestNATSURL returns the NATS URL for integration tests.
// Uses docker-compose.test.yml NATS on port 4223.
func TestNATSURL() string {
	if url := os.Getenv("TEST_NATS_URL"); url != "" {
		return url
	}
	return "nats://localhost:4223"
}

// RequireIntegration skips the test if not running integration tests.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("skipping integration test (set INTEGRATION_TEST=1 to run)")
	}
}

// Registration returns a valid registration for tests. Override fields
// after the call as needed.
func Registration() auction.Registration {
	return auction.Registration{
		Item:        "vintage synthesizer",
		Owner:       auction.BidderID("owner-1"),
		StartingBid: 100,
		Increment:   10,
	}
}

// WaitFor polls cond until it returns true or the timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
