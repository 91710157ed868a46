package auction

import (
	"time"

	"code.cloudfoundry.org/clock"
)

// TimerPolicy selects how accepted bids interact with the countdown.
// The policy is pure configuration: the engine consults it, the timer
// itself never does.
type TimerPolicy int32

const (
	// PolicyQuietPeriod restarts the countdown on every accepted bid;
	// the auction closes only once the full duration elapses with no
	// intervening bid.
	PolicyQuietPeriod TimerPolicy = iota

	// PolicyFixedWindow arms the countdown once at StartAuction; bids
	// do not extend it and expiry fires regardless of bid activity.
	PolicyFixedWindow
)

func (p TimerPolicy) String() string {
	switch p {
	case PolicyQuietPeriod:
		return "quiet-period"
	case PolicyFixedWindow:
		return "fixed-window"
	}
	return "unknown"
}

// ParseTimerPolicy maps a config string to a policy.
func ParseTimerPolicy(s string) (TimerPolicy, bool) {
	switch s {
	case "quiet", "quiet-period":
		return PolicyQuietPeriod, true
	case "fixed", "fixed-window":
		return PolicyFixedWindow, true
	}
	return PolicyQuietPeriod, false
}

// countdown is the single cancellable, restartable delay bound to the
// active session. arm and disarm are called under the engine lock. The
// expiry goroutine re-enters the engine through fire, which validates
// the generation before acting, so a timer stopped an instant too late
// can never close a session it no longer belongs to.
type countdown struct {
	clock    clock.Clock
	duration time.Duration
	fire     func(generation uint64)

	generation uint64
	timer      clock.Timer
	cancel     chan struct{}
}

func newCountdown(c clock.Clock, d time.Duration, fire func(generation uint64)) *countdown {
	return &countdown{clock: c, duration: d, fire: fire}
}

// arm starts a fresh countdown, replacing any running one. The swap is
// atomic with respect to the caller's critical section: a bid that
// restarts the countdown can never be trailed by a stale expiry.
func (c *countdown) arm() {
	c.disarm()
	c.generation++
	generation := c.generation
	timer := c.clock.NewTimer(c.duration)
	cancel := make(chan struct{})
	c.timer = timer
	c.cancel = cancel

	go func() {
		select {
		case <-timer.C():
			c.fire(generation)
		case <-cancel:
		}
	}()
}

// disarm stops the running countdown. Idempotent: disarming an
// already-fired, already-cancelled, or never-armed countdown is a
// no-op.
func (c *countdown) disarm() {
	if c.timer == nil {
		return
	}
	c.timer.Stop()
	close(c.cancel)
	c.timer = nil
	c.cancel = nil
	// Invalidate any fire already in flight past the cancel select.
	c.generation++
}

// live reports whether generation belongs to the currently armed timer.
func (c *countdown) live(generation uint64) bool {
	return c.timer != nil && generation == c.generation
}
