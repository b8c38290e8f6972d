package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/homevet/intake-platform/internal/availability"
	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/session"
	"github.com/homevet/intake-platform/internal/zones"
	"github.com/homevet/intake-platform/pkg/logging"
)

// SearchMetrics receives one observation per resolved slot search.
type SearchMetrics interface {
	ObserveSlotSearch(status string, seconds float64)
}

// SlotHandler drives the slot search step. Each session gets a searcher with
// latest-wins semantics: re-posting after an urgency or household edit cancels
// the in-flight search, and only the newest result reaches the session store.
type SlotHandler struct {
	backend    availability.Backend
	sessions   *session.Store
	practiceID string
	metrics    SearchMetrics
	logger     *logging.Logger

	mu        sync.Mutex
	searchers map[string]*searcherEntry
}

type searcherEntry struct {
	searcher *availability.Searcher
	touched  time.Time
}

func NewSlotHandler(backend availability.Backend, sessions *session.Store, practiceID string, metrics SearchMetrics, logger *logging.Logger) *SlotHandler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &SlotHandler{
		backend:    backend,
		sessions:   sessions,
		practiceID: practiceID,
		metrics:    metrics,
		logger:     logger,
		searchers:  make(map[string]*searcherEntry),
	}
	go h.cleanup()
	return h
}

func (h *SlotHandler) searcherFor(sid string) *availability.Searcher {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.searchers[sid]
	if !ok {
		e = &searcherEntry{searcher: availability.NewSearcher(h.backend, h.logger)}
		h.searchers[sid] = e
	}
	e.touched = time.Now()
	return e.searcher
}

func (h *SlotHandler) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.Lock()
		cutoff := time.Now().Add(-2 * time.Hour)
		for sid, e := range h.searchers {
			if e.touched.Before(cutoff) {
				delete(h.searchers, sid)
			}
		}
		h.mu.Unlock()
	}
}

// slotSearchRequest carries everything the two-stage gate and the search
// window need. Needs are the selected animals' visit reasons; the count of
// selected animals drives the derived duration.
type slotSearchRequest struct {
	Urgency             intake.Urgency `json:"urgency"`
	Needs               []intake.Need  `json:"needs"`
	SelectedAnimalCount int            `json:"selectedAnimalCount"`
	Address             intake.Address `json:"address"`
	ProviderID          string         `json:"providerId"`
}

// Search resolves the two-stage gate and, when a search is due, kicks it off.
// POST /api/intake/slot-search
func (h *SlotHandler) Search(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		jsonError(w, sessionHeader+" header is required", http.StatusBadRequest)
		return
	}
	var req slotSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	for _, n := range req.Needs {
		if err := n.Validate(); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	search, window, err := intake.ShouldSearch(req.Needs, req.Urgency)
	if err != nil {
		jsonError(w, "unknown urgency value", http.StatusBadRequest)
		return
	}
	if !search {
		reason := intake.SkipReasonUrgent
		if intake.ForceManualScheduling(req.Needs) {
			reason = intake.SkipReasonEndOfLife
		}
		if h.sessions != nil {
			if err := h.sessions.ClearSlotOffer(r.Context(), sid); err != nil {
				h.logger.Warn("failed to clear slot offer", "error", err, "session", sid)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"manualSchedulingRequired": true,
			"reason":                   reason,
		})
		return
	}

	if h.blocked(r.Context(), sid, req.Address) {
		jsonError(w, "address is outside the service area", http.StatusConflict)
		return
	}

	duration := intake.BaseVisitMinutes
	if n := req.SelectedAnimalCount; n > 1 {
		duration = intake.BaseVisitMinutes + (n-1)*intake.PerAnimalExtraMinutes
	}
	searchReq := availability.SearchRequest{
		PracticeID:      h.practiceID,
		StartDaysOut:    window.StartDays,
		Days:            window.Days(),
		DurationMinutes: duration,
		Line1:           req.Address.Line1,
		City:            req.Address.City,
		State:           req.Address.State,
		PostalCode:      req.Address.PostalCode,
		ProviderID:      req.ProviderID,
	}

	started := time.Now()
	searcher := h.searcherFor(sid)
	searcher.Refresh(context.WithoutCancel(r.Context()), searchReq, func(offer *availability.SlotOffer) {
		elapsed := time.Since(started).Seconds()
		if offer == nil {
			if h.metrics != nil {
				h.metrics.ObserveSlotSearch("failed", elapsed)
			}
			return
		}
		status := "ok"
		if offer.Empty() {
			status = "empty"
		}
		if h.metrics != nil {
			h.metrics.ObserveSlotSearch(status, elapsed)
		}
		if h.sessions != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.sessions.SaveSlotOffer(ctx, sid, *offer); err != nil {
				h.logger.Warn("failed to cache slot offer", "error", err, "session", sid)
			}
		}
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "searching"})
}

// Offer reports the latest resolved offer for the session, or pending.
// GET /api/intake/slot-offer
func (h *SlotHandler) Offer(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		jsonError(w, sessionHeader+" header is required", http.StatusBadRequest)
		return
	}

	if offer := h.searcherFor(sid).Offer(); offer != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "offer": offer})
		return
	}
	if h.sessions != nil {
		offer, err := h.sessions.SlotOffer(r.Context(), sid)
		if err != nil {
			h.logger.Warn("slot offer read failed", "error", err, "session", sid)
		} else if offer != nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "offer": offer})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

// blocked reports whether the session's resolved zone state forbids lookups.
// Only an explicit not-serviced blocks; unresolved and inconclusive fail open.
func (h *SlotHandler) blocked(ctx context.Context, sid string, addr intake.Address) bool {
	if h.sessions == nil {
		return false
	}
	res, err := h.sessions.ZoneResult(ctx, sid, addr)
	if err != nil {
		h.logger.Warn("zone result read failed, failing open", "error", err, "session", sid)
		return false
	}
	return res == zones.ResultNotServiced
}
