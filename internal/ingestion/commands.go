package ingestion

import (
	"github.com/jerom68/Auction/internal/auction"
)

// Command is an engine operation decoded from a chat-adapter message.
type Command interface {
	// Name returns the command discriminator used in subjects, logs
	// and metrics.
	Name() string
}

// RegisterCommand queues an item for auction.
type RegisterCommand struct {
	Item        string
	Owner       auction.BidderID
	StartingBid int64
	Increment   int64
	Attributes  map[string]string
}

func (RegisterCommand) Name() string { return "register" }

// StartCommand opens bidding on the oldest registration.
type StartCommand struct {
	Operator auction.BidderID
}

func (StartCommand) Name() string { return "start" }

// BidCommand places a bid on the running auction.
type BidCommand struct {
	Bidder auction.BidderID
	Amount int64
}

func (BidCommand) Name() string { return "bid" }

// CancelCommand abandons the running auction.
type CancelCommand struct {
	Operator auction.BidderID
}

func (CancelCommand) Name() string { return "cancel" }
