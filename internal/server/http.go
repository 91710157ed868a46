package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jerom68/Auction/internal/auction"
	"github.com/jerom68/Auction/internal/observability"
)

// HTTPServer is the adapter-facing API: the chat adapter (or an
// operator's tooling) drives the engine through it. It also carries the
// liveness endpoints for the hosting platform.
type HTTPServer struct {
	engine *auction.Engine
	health *observability.HealthChecker
	log    zerolog.Logger
	addr   string
	srv    *http.Server
}

func NewHTTPServer(addr string, engine *auction.Engine, health *observability.HealthChecker, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		engine: engine,
		health: health,
		log:    log,
		addr:   addr,
	}
}

type registrationRequest struct {
	Item        string            `json:"item"`
	Owner       string            `json:"owner"`
	StartingBid int64             `json:"starting_bid"`
	Increment   int64             `json:"increment"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type bidRequest struct {
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

type registrationView struct {
	ID          string            `json:"id"`
	Item        string            `json:"item"`
	Owner       string            `json:"owner"`
	StartingBid int64             `json:"starting_bid"`
	Increment   int64             `json:"increment"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

type sessionResponse struct {
	RegistrationID string            `json:"registration_id"`
	Item           string            `json:"item"`
	Owner          string            `json:"owner"`
	Status         string            `json:"status"`
	StartingBid    int64             `json:"starting_bid"`
	Increment      int64             `json:"increment"`
	HighBid        int64             `json:"high_bid"`
	HighBidder     string            `json:"high_bidder,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
}

type leaderboardEntry struct {
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Router builds the chi router. Exposed separately from Start so tests
// can drive it with httptest.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Second))

	r.Post("/registrations", s.handleRegister)
	r.Get("/registrations", s.handlePendingRegistrations)
	r.Post("/auction/start", s.handleStart)
	r.Post("/auction/bids", s.handleBid)
	r.Delete("/auction", s.handleCancel)
	r.Get("/auction", s.handleSession)
	r.Get("/auction/leaderboard", s.handleLeaderboard)
	r.Post("/bidders/{id}/bar", s.handleBar)
	r.Delete("/bidders/{id}/bar", s.handleUnbar)

	if s.health != nil {
		r.Get("/healthz", s.health.LivenessHandler)
		r.Get("/readyz", s.health.ReadinessHandler)
	}

	return r
}

// Start runs the HTTP server until ctx is cancelled.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Owner == "" {
		writeProblem(w, r, http.StatusBadRequest, "validation_error", "owner is required")
		return
	}

	id, err := s.engine.Register(auction.Registration{
		Item:        req.Item,
		Owner:       auction.BidderID(req.Owner),
		StartingBid: req.StartingBid,
		Increment:   req.Increment,
		Attributes:  req.Attributes,
	})
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"registration_id": id.String()})
}

func (s *HTTPServer) handlePendingRegistrations(w http.ResponseWriter, r *http.Request) {
	pending := s.engine.PendingRegistrations()
	out := make([]registrationView, 0, len(pending))
	for _, reg := range pending {
		out = append(out, registrationView{
			ID:          reg.ID.String(),
			Item:        reg.Item,
			Owner:       string(reg.Owner),
			StartingBid: reg.StartingBid,
			Increment:   reg.Increment,
			Attributes:  reg.Attributes,
			SubmittedAt: reg.SubmittedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleStart(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.StartAuction()
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

func (s *HTTPServer) handleBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Bidder == "" {
		writeProblem(w, r, http.StatusBadRequest, "validation_error", "bidder is required")
		return
	}

	res, err := s.engine.PlaceBid(auction.BidderID(req.Bidder), req.Amount)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"high_bid":    res.HighBid,
		"high_bidder": string(res.HighBidder),
		"placed_at":   res.PlacedAt,
	})
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.CancelAuction(); err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	view, ok := s.engine.Session()
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "no_active_auction", "no auction is running")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

func (s *HTTPServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeProblem(w, r, http.StatusBadRequest, "validation_error", "n must be a non-negative integer")
			return
		}
		n = parsed
	}

	entries := s.engine.Leaderboard(n)
	out := make([]leaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardEntry{
			Bidder:    string(e.Bidder),
			Amount:    e.Amount,
			Timestamp: e.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleBar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeProblem(w, r, http.StatusBadRequest, "validation_error", "bidder id is required")
		return
	}
	s.engine.BarBidder(auction.BidderID(id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleUnbar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeProblem(w, r, http.StatusBadRequest, "validation_error", "bidder id is required")
		return
	}
	s.engine.UnbarBidder(auction.BidderID(id))
	w.WriteHeader(http.StatusNoContent)
}

func toSessionResponse(v auction.SessionView) sessionResponse {
	return sessionResponse{
		RegistrationID: v.RegistrationID,
		Item:           v.Item,
		Owner:          string(v.Owner),
		Status:         v.Status.String(),
		StartingBid:    v.StartingBid,
		Increment:      v.Increment,
		HighBid:        v.HighBid,
		HighBidder:     string(v.HighBidder),
		Attributes:     v.Attributes,
		StartedAt:      v.StartedAt,
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *auction.ValidationError
	var tooLow *auction.BidTooLowError

	switch {
	case errors.As(err, &validationErr):
		writeProblem(w, r, http.StatusBadRequest, "validation_error", err.Error())
	case errors.As(err, &tooLow):
		writeProblem(w, r, http.StatusBadRequest, "bid_too_low", err.Error())
	case errors.Is(err, auction.ErrAlreadyActive):
		writeProblem(w, r, http.StatusConflict, "already_active", err.Error())
	case errors.Is(err, auction.ErrNoRegistrations):
		writeProblem(w, r, http.StatusConflict, "no_registrations", err.Error())
	case errors.Is(err, auction.ErrNoActiveAuction):
		writeProblem(w, r, http.StatusNotFound, "no_active_auction", err.Error())
	case errors.Is(err, auction.ErrBidderBarred):
		writeProblem(w, r, http.StatusForbidden, "bidder_barred", err.Error())
	default:
		writeProblem(w, r, http.StatusInternalServerError, "engine_error", err.Error())
	}
}

func writeProblem(w http.ResponseWriter, r *http.Request, code int, title, detail string) {
	reqID := middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/problem+json")
	if reqID != "" {
		w.Header().Set("X-Request-ID", reqID)
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"title":      title,
		"status":     code,
		"detail":     detail,
		"instance":   r.URL.Path,
		"request_id": reqID,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
