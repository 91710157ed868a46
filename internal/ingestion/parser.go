package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/jerom68/Auction/internal/auction"
)

// Wire formats for chat-adapter commands. The adapter has already
// parsed slash-command text or form input; the engine side only sees
// structured JSON with the calling identity attached.

type registerWire struct {
	Item        string            `json:"item"`
	Owner       string            `json:"owner"`
	StartingBid int64             `json:"starting_bid"`
	Increment   int64             `json:"increment"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type startWire struct {
	Operator string `json:"operator"`
}

type bidWire struct {
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

type cancelWire struct {
	Operator string `json:"operator"`
}

// ParseCommand decodes a raw adapter message into a typed command.
// Validation of values (bid thresholds, registration bounds) is the
// engine's job; the parser only rejects malformed payloads and missing
// identities.
func ParseCommand(commandName string, data []byte) (Command, error) {
	switch commandName {
	case "register":
		var w registerWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode register: %w", err)
		}
		if w.Owner == "" {
			return nil, fmt.Errorf("register: missing owner identity")
		}
		return &RegisterCommand{
			Item:        w.Item,
			Owner:       auction.BidderID(w.Owner),
			StartingBid: w.StartingBid,
			Increment:   w.Increment,
			Attributes:  w.Attributes,
		}, nil

	case "start":
		var w startWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode start: %w", err)
		}
		return &StartCommand{Operator: auction.BidderID(w.Operator)}, nil

	case "bid":
		var w bidWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode bid: %w", err)
		}
		if w.Bidder == "" {
			return nil, fmt.Errorf("bid: missing bidder identity")
		}
		return &BidCommand{
			Bidder: auction.BidderID(w.Bidder),
			Amount: w.Amount,
		}, nil

	case "cancel":
		var w cancelWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode cancel: %w", err)
		}
		return &CancelCommand{Operator: auction.BidderID(w.Operator)}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", commandName)
	}
}
