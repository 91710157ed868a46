package ingestion_test

import (
	"testing"

	"github.com/jerom68/Auction/internal/ingestion"
)

func TestParseRegister(t *testing.T) {
	data := []byte(`{"item":"rune blade","owner":"u-42","starting_bid":500,"increment":25,"attributes":{"level":"60"}}`)

	cmd, err := ingestion.ParseCommand("register", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	reg, ok := cmd.(*ingestion.RegisterCommand)
	if !ok {
		t.Fatalf("got %T, want *RegisterCommand", cmd)
	}
	if reg.Item != "rune blade" || reg.Owner != "u-42" || reg.StartingBid != 500 || reg.Increment != 25 {
		t.Fatalf("decoded = %+v", reg)
	}
	if reg.Attributes["level"] != "60" {
		t.Fatalf("attributes = %v", reg.Attributes)
	}
	if reg.Name() != "register" {
		t.Fatalf("name = %q", reg.Name())
	}
}

func TestParseBid(t *testing.T) {
	cmd, err := ingestion.ParseCommand("bid", []byte(`{"bidder":"u-7","amount":550}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bid, ok := cmd.(*ingestion.BidCommand)
	if !ok {
		t.Fatalf("got %T, want *BidCommand", cmd)
	}
	if bid.Bidder != "u-7" || bid.Amount != 550 {
		t.Fatalf("decoded = %+v", bid)
	}
}

func TestParseStartAndCancel(t *testing.T) {
	cmd, err := ingestion.ParseCommand("start", []byte(`{"operator":"mod-1"}`))
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	if _, ok := cmd.(*ingestion.StartCommand); !ok {
		t.Fatalf("got %T, want *StartCommand", cmd)
	}

	cmd, err = ingestion.ParseCommand("cancel", []byte(`{"operator":"mod-1"}`))
	if err != nil {
		t.Fatalf("parse cancel: %v", err)
	}
	if _, ok := cmd.(*ingestion.CancelCommand); !ok {
		t.Fatalf("got %T, want *CancelCommand", cmd)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		command string
		data    string
	}{
		{"malformed json", "bid", `{"bidder":`},
		{"missing bidder", "bid", `{"amount":550}`},
		{"missing owner", "register", `{"item":"x","starting_bid":100,"increment":10}`},
		{"unknown command", "promote", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ingestion.ParseCommand(tc.command, []byte(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
