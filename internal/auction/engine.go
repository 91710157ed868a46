package auction

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/event"
	"github.com/jerom68/Auction/internal/observability"
)

// Config selects the countdown behavior for every session the engine
// runs.
type Config struct {
	Policy    TimerPolicy
	Countdown time.Duration
}

// DefaultCountdown is used when no duration is configured.
const DefaultCountdown = 15 * time.Second

// Engine owns the auction lifecycle: the registration queue, the
// single live session, its bid ledger, and the countdown timer. Every
// operation runs under one mutex, so a bid arriving at the instant of
// expiry is deterministically accepted-before-close or rejected-after,
// and a countdown restart is atomic with the bid that caused it.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	clock   clock.Clock
	log     zerolog.Logger
	sink    event.Sink
	metrics *observability.Metrics

	queue    registrationQueue
	sess     *session
	ledger   *Ledger
	barred   map[BidderID]struct{}
	timer    *countdown
	sequence int64
}

// NewEngine creates an idle engine. sink receives every lifecycle
// notification; metrics may be nil.
func NewEngine(
	cfg Config,
	clk clock.Clock,
	sink event.Sink,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *Engine {
	if cfg.Countdown <= 0 {
		cfg.Countdown = DefaultCountdown
	}
	e := &Engine{
		cfg:     cfg,
		clock:   clk,
		log:     log,
		sink:    sink,
		metrics: metrics,
		barred:  make(map[BidderID]struct{}),
	}
	e.timer = newCountdown(clk, cfg.Countdown, e.tick)
	return e
}

// Register validates and queues an item submission. The engine assigns
// the registration ID; no side effects beyond storage.
func (e *Engine) Register(reg Registration) (uuid.UUID, error) {
	if err := reg.validate(); err != nil {
		return uuid.Nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reg.ID = uuid.New()
	reg.SubmittedAt = e.clock.Now()
	e.queue.push(reg)

	if e.metrics != nil {
		e.metrics.RegistrationQueue.Set(float64(e.queue.len()))
	}
	e.log.Debug().
		Str("registration_id", reg.ID.String()).
		Str("item", reg.Item).
		Int64("starting_bid", reg.StartingBid).
		Int64("increment", reg.Increment).
		Msg("registration queued")

	return reg.ID, nil
}

// StartAuction pops the oldest registration and opens bidding on it.
// Never a silent no-op: starting while a session runs fails with
// ErrAlreadyActive.
func (e *Engine) StartAuction() (SessionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != nil && e.sess.status.active() {
		return SessionView{}, ErrAlreadyActive
	}

	reg, ok := e.queue.pop()
	if !ok {
		return SessionView{}, ErrNoRegistrations
	}

	now := e.clock.Now()
	e.sess = &session{
		reg:       reg,
		status:    StatusOpen,
		highBid:   reg.StartingBid,
		startedAt: now,
	}
	e.ledger = NewLedger()
	e.timer.arm()

	if e.metrics != nil {
		e.metrics.AuctionsStarted.Inc()
		e.metrics.RegistrationQueue.Set(float64(e.queue.len()))
		e.metrics.CurrentHighBid.Set(float64(reg.StartingBid))
	}
	e.log.Info().
		Str("registration_id", reg.ID.String()).
		Str("item", reg.Item).
		Int64("starting_bid", reg.StartingBid).
		Str("policy", e.cfg.Policy.String()).
		Dur("countdown", e.cfg.Countdown).
		Msg("auction started")

	e.emit(event.KindStarted, nil, nil)
	return e.sess.view(), nil
}

// PlaceBid validates a bid against the escalation rule: the amount
// must be at least the current high bid plus the increment, where the
// high bid starts at the starting bid. On acceptance the ledger is
// updated and, under the quiet-period policy, the countdown restarts
// within the same critical section.
func (e *Engine) PlaceBid(bidder BidderID, amount int64) (BidResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil || !e.sess.status.active() {
		e.rejected("no_auction")
		return BidResult{}, ErrNoActiveAuction
	}
	if _, barred := e.barred[bidder]; barred {
		e.rejected("barred")
		return BidResult{}, ErrBidderBarred
	}

	required := e.sess.highBid + e.sess.reg.Increment
	if amount < required {
		e.rejected("too_low")
		e.emit(event.KindBidRejected, &event.BidSnapshot{
			Bidder:   string(bidder),
			Amount:   amount,
			Required: required,
			Reason:   "bid below minimum escalation",
		}, nil)
		return BidResult{}, &BidTooLowError{Offered: amount, Required: required}
	}

	now := e.clock.Now()
	e.sess.highBid = amount
	e.sess.highBidder = bidder
	e.sess.lastBidAt = now
	e.ledger.Record(bidder, amount, now)

	if e.cfg.Policy == PolicyQuietPeriod {
		e.timer.arm()
		if e.metrics != nil {
			e.metrics.CountdownResets.Inc()
		}
	}

	if e.metrics != nil {
		e.metrics.BidsAccepted.Inc()
		e.metrics.CurrentHighBid.Set(float64(amount))
	}
	e.log.Info().
		Str("bidder", string(bidder)).
		Int64("amount", amount).
		Msg("bid accepted")

	e.emit(event.KindBidAccepted, &event.BidSnapshot{
		Bidder: string(bidder),
		Amount: amount,
	}, nil)

	return BidResult{HighBid: amount, HighBidder: bidder, PlacedAt: now}, nil
}

// CancelAuction stops the countdown and abandons the session without a
// winner.
func (e *Engine) CancelAuction() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil || !e.sess.status.active() {
		return ErrNoActiveAuction
	}

	e.timer.disarm()
	e.sess.status = StatusCancelled
	e.log.Info().Str("item", e.sess.reg.Item).Msg("auction cancelled")
	e.emit(event.KindCancelled, nil, nil)
	e.finish("cancelled")
	return nil
}

// tick runs when the countdown elapses without cancellation. The
// generation check makes a stale expiry (raced with a cancel or a
// quiet-period restart) a no-op.
func (e *Engine) tick(generation uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.timer.live(generation) {
		return
	}
	if e.sess == nil || !e.sess.status.active() {
		return
	}

	e.timer.disarm()
	e.sess.status = StatusClosing
	if e.metrics != nil {
		e.metrics.CountdownFires.Inc()
	}

	winner, hasBids := e.ledger.Winner()
	e.sess.status = StatusClosed

	if !hasBids {
		e.log.Info().Str("item", e.sess.reg.Item).Msg("auction closed with no bids")
		e.emit(event.KindNoBids, nil, nil)
		e.finish("no_bids")
		return
	}

	e.log.Info().
		Str("item", e.sess.reg.Item).
		Str("winner", string(winner.Bidder)).
		Int64("winning_bid", winner.Amount).
		Msg("auction won")
	if e.metrics != nil {
		e.metrics.WinningBid.Observe(float64(winner.Amount))
	}
	e.emit(event.KindWon, nil, &event.ResultSnapshot{
		Winner: string(winner.Bidder),
		Amount: winner.Amount,
		Owner:  string(e.sess.reg.Owner),
	})
	e.finish("won")
}

// finish resets the engine to Idle after the terminal notification has
// been emitted. The ledger is retained for leaderboard queries until
// the next StartAuction.
func (e *Engine) finish(outcome string) {
	if e.metrics != nil {
		e.metrics.AuctionsFinished.WithLabelValues(outcome).Inc()
		e.metrics.CurrentHighBid.Set(0)
	}
	e.sess = nil
}

// Session returns a snapshot of the running session; ok is false when
// the engine is idle.
func (e *Engine) Session() (SessionView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return SessionView{}, false
	}
	return e.sess.view(), true
}

// Leaderboard returns the top-n bids by amount descending from the
// current or most recently finished session.
func (e *Engine) Leaderboard(n int) []LedgerEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger == nil {
		return []LedgerEntry{}
	}
	return e.ledger.Top(n)
}

// PendingRegistrations returns the queue in arrival order.
func (e *Engine) PendingRegistrations() []Registration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.snapshot()
}

// BarBidder bars an identity from bidding until UnbarBidder. Engine
// state, not session state: it survives across auctions.
func (e *Engine) BarBidder(bidder BidderID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.barred[bidder] = struct{}{}
	e.log.Info().Str("bidder", string(bidder)).Msg("bidder barred")
}

// UnbarBidder lifts a bar. Unbarring an unknown identity is a no-op.
func (e *Engine) UnbarBidder(bidder BidderID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.barred, bidder)
	e.log.Info().Str("bidder", string(bidder)).Msg("bidder unbarred")
}

// Barred reports whether an identity is currently barred.
func (e *Engine) Barred(bidder BidderID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, barred := e.barred[bidder]
	return barred
}

// Stop disarms the countdown so its goroutine exits. The session, if
// any, is left as-is; the process is going away.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.disarm()
}

func (e *Engine) rejected(reason string) {
	if e.metrics != nil {
		e.metrics.BidsRejected.WithLabelValues(reason).Inc()
	}
}

// emit assigns the next sequence number and hands the notification to
// the sink. Called under the engine lock; sinks must not block.
func (e *Engine) emit(kind event.Kind, bid *event.BidSnapshot, result *event.ResultSnapshot) {
	e.sequence++
	n := event.Notification{
		Sequence:  e.sequence,
		Kind:      kind,
		KindName:  kind.String(),
		Timestamp: e.clock.Now(),
		Session:   e.snapshot(),
		Bid:       bid,
		Result:    result,
	}
	if e.metrics != nil {
		e.metrics.NotificationsEmitted.WithLabelValues(kind.String()).Inc()
	}
	e.sink.Notify(n)
}

func (e *Engine) snapshot() event.SessionSnapshot {
	if e.sess == nil {
		return event.SessionSnapshot{Status: StatusIdle.String()}
	}
	return event.SessionSnapshot{
		RegistrationID: e.sess.reg.ID.String(),
		Item:           e.sess.reg.Item,
		Owner:          string(e.sess.reg.Owner),
		Status:         e.sess.status.String(),
		StartingBid:    e.sess.reg.StartingBid,
		Increment:      e.sess.reg.Increment,
		HighBid:        e.sess.highBid,
		HighBidder:     string(e.sess.highBidder),
		Attributes:     e.sess.reg.Attributes,
	}
}
