package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the auction service.
type Metrics struct {
	// --- Engine lifecycle ---
	AuctionsStarted   prometheus.Counter
	AuctionsFinished  *prometheus.CounterVec // outcome: won|no_bids|cancelled
	RegistrationQueue prometheus.Gauge
	CurrentHighBid    prometheus.Gauge

	// --- Bidding ---
	BidsAccepted prometheus.Counter
	BidsRejected *prometheus.CounterVec // reason: too_low|no_auction|barred
	WinningBid   prometheus.Histogram

	// --- Countdown ---
	CountdownResets prometheus.Counter
	CountdownFires  prometheus.Counter

	// --- Notification pipeline ---
	NotificationsEmitted *prometheus.CounterVec // kind
	NotifyDrops          prometheus.Counter
	PublishErrors        prometheus.Counter

	// --- Command ingestion ---
	CommandsReceived *prometheus.CounterVec // command
	CommandErrors    *prometheus.CounterVec // command, reason
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		AuctionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auction_sessions_started_total",
			Help: "Auctions opened from the registration queue",
		}),

		AuctionsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_sessions_finished_total",
			Help: "Auctions that reached a terminal state",
		}, []string{"outcome"}),

		RegistrationQueue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "auction_registration_queue_depth",
			Help: "Pending registrations awaiting an auction",
		}),

		CurrentHighBid: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "auction_current_high_bid",
			Help: "High bid of the running session (0 when idle)",
		}),

		BidsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auction_bids_accepted_total",
			Help: "Bids that cleared the escalation threshold",
		}),

		BidsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_bids_rejected_total",
			Help: "Bids rejected, by reason",
		}, []string{"reason"}),

		WinningBid: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "auction_winning_bid",
			Help:    "Winning bid amounts",
			Buckets: []float64{10, 50, 100, 500, 1_000, 5_000, 10_000, 50_000, 100_000},
		}),

		CountdownResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auction_countdown_resets_total",
			Help: "Countdown restarts triggered by accepted bids",
		}),

		CountdownFires: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auction_countdown_fires_total",
			Help: "Countdown expiries that closed a session",
		}),

		NotificationsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_notifications_emitted_total",
			Help: "Lifecycle notifications emitted, by kind",
		}, []string{"kind"}),

		NotifyDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auction_notification_drops_total",
			Help: "Notifications dropped due to a full outbound buffer",
		}),

		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auction_publish_errors_total",
			Help: "Outbound NATS publish failures",
		}),

		CommandsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_commands_received_total",
			Help: "Commands received from the chat adapter subjects",
		}, []string{"command"}),

		CommandErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_command_errors_total",
			Help: "Commands that failed to parse or apply",
		}, []string{"command", "reason"}),
	}
}
