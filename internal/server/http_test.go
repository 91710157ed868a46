package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/auction"
	"github.com/jerom68/Auction/internal/event"
	"github.com/jerom68/Auction/internal/observability"
	"github.com/jerom68/Auction/internal/server"
)

func newTestServer(t *testing.T) (*httptest.Server, *auction.Engine) {
	t.Helper()
	fc := fakeclock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	engine := auction.NewEngine(
		auction.Config{Policy: auction.PolicyQuietPeriod, Countdown: 15 * time.Second},
		fc,
		event.Sinks{},
		zerolog.Nop(),
		nil,
	)
	t.Cleanup(engine.Stop)

	srv := server.NewHTTPServer(":0", engine, observability.NewHealthChecker(), zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, engine
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestRegisterAndStartOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/registrations",
		`{"item":"vintage synthesizer","owner":"owner-1","starting_bid":100,"increment":10}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	var created map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["registration_id"] == "" {
		t.Fatal("missing registration_id")
	}

	resp = postJSON(t, ts.URL+"/auction/start", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	var session map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session["status"] != "Open" || session["high_bid"] != float64(100) {
		t.Fatalf("session = %v", session)
	}
}

func TestBidOverHTTP(t *testing.T) {
	ts, engine := newTestServer(t)
	engine.Register(auction.Registration{Item: "x", Owner: "o", StartingBid: 100, Increment: 10})
	engine.StartAuction()

	resp := postJSON(t, ts.URL+"/auction/bids", `{"bidder":"alice","amount":100}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("too-low bid status = %d, want 400", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}
	var problem map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem["title"] != "bid_too_low" {
		t.Fatalf("problem = %v", problem)
	}

	resp = postJSON(t, ts.URL+"/auction/bids", `{"bidder":"alice","amount":110}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bid status = %d, want 200", resp.StatusCode)
	}
}

func TestErrorMapping(t *testing.T) {
	ts, engine := newTestServer(t)

	// Nothing queued.
	resp := postJSON(t, ts.URL+"/auction/start", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("start with empty queue = %d, want 409", resp.StatusCode)
	}

	// No running auction.
	resp = postJSON(t, ts.URL+"/auction/bids", `{"bidder":"alice","amount":110}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("bid without auction = %d, want 404", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/auction", nil)
	getResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("get idle auction = %d, want 404", getResp.StatusCode)
	}

	// Double start.
	engine.Register(auction.Registration{Item: "x", Owner: "o", StartingBid: 100, Increment: 10})
	engine.Register(auction.Registration{Item: "y", Owner: "o", StartingBid: 100, Increment: 10})
	engine.StartAuction()
	resp = postJSON(t, ts.URL+"/auction/start", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double start = %d, want 409", resp.StatusCode)
	}

	// Barred bidder.
	engine.BarBidder("mallory")
	resp = postJSON(t, ts.URL+"/auction/bids", `{"bidder":"mallory","amount":500}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("barred bid = %d, want 403", resp.StatusCode)
	}
}

func TestBarOverHTTP(t *testing.T) {
	ts, engine := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/bidders/mallory/bar", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("bar status = %d, want 204", resp.StatusCode)
	}
	if !engine.Barred("mallory") {
		t.Fatal("mallory should be barred")
	}

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/bidders/mallory/bar", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unbar: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unbar status = %d, want 204", resp.StatusCode)
	}
	if engine.Barred("mallory") {
		t.Fatal("mallory should be unbarred")
	}
}

func TestLeaderboardOverHTTP(t *testing.T) {
	ts, engine := newTestServer(t)
	engine.Register(auction.Registration{Item: "x", Owner: "o", StartingBid: 100, Increment: 10})
	engine.StartAuction()
	engine.PlaceBid("alice", 110)
	engine.PlaceBid("bob", 120)

	resp, err := http.Get(ts.URL + "/auction/leaderboard?n=1")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	defer resp.Body.Close()
	var entries []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0]["bidder"] != "bob" {
		t.Fatalf("leaderboard = %v", entries)
	}

	resp, err = http.Get(ts.URL + "/auction/leaderboard?n=bogus")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bogus n = %d, want 400", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", resp.StatusCode)
	}

	// Readiness starts false until main flips it.
	resp, err = http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", resp.StatusCode)
	}
}
