package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/session"
	"github.com/homevet/intake-platform/internal/zones"
	"github.com/homevet/intake-platform/pkg/logging"
)

// ZoneHandler runs the zone gate for each intake session. Address edits POST
// here as the requester types; the per-session gate debounces them and the
// resolved result lands in the session store, where the poll endpoint reads
// it. Each edit supersedes the previous in-flight check.
type ZoneHandler struct {
	checker  zones.Checker
	sessions *session.Store
	quiet    time.Duration
	metrics  zones.Metrics
	logger   *logging.Logger

	mu    sync.Mutex
	gates map[string]*gateEntry
}

type gateEntry struct {
	gate    *zones.Gate
	touched time.Time
}

func NewZoneHandler(checker zones.Checker, sessions *session.Store, quiet time.Duration, metrics zones.Metrics, logger *logging.Logger) *ZoneHandler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &ZoneHandler{
		checker:  checker,
		sessions: sessions,
		quiet:    quiet,
		metrics:  metrics,
		logger:   logger,
		gates:    make(map[string]*gateEntry),
	}
	go h.cleanup()
	return h
}

func (h *ZoneHandler) gateFor(sid string) *zones.Gate {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.gates[sid]
	if !ok {
		e = &gateEntry{gate: zones.NewGate(h.checker, h.quiet, h.logger, h.metrics)}
		h.gates[sid] = e
	}
	e.touched = time.Now()
	return e.gate
}

// cleanup evicts gates for sessions idle longer than any realistic form
// session; their cached results survive in the session store.
func (h *ZoneHandler) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.Lock()
		cutoff := time.Now().Add(-2 * time.Hour)
		for sid, e := range h.gates {
			if e.touched.Before(cutoff) {
				delete(h.gates, sid)
			}
		}
		h.mu.Unlock()
	}
}

// zoneCheckRequest is one address edit.
type zoneCheckRequest struct {
	ClientStatus       intake.AccountStatus `json:"clientStatus"`
	NewAddressForVisit bool                 `json:"newAddressForVisit"`
	Address            intake.Address       `json:"address"`
}

// Check feeds an address edit into the session's gate.
// POST /api/intake/zone-check
func (h *ZoneHandler) Check(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		jsonError(w, sessionHeader+" header is required", http.StatusBadRequest)
		return
	}
	var req zoneCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.ClientStatus != intake.AccountNew && req.ClientStatus != intake.AccountExisting {
		jsonError(w, "clientStatus must be \"new\" or \"existing\"", http.StatusBadRequest)
		return
	}

	// A previously resolved check for this exact address answers immediately.
	if h.sessions != nil {
		if cached, err := h.sessions.ZoneResult(r.Context(), sid, req.Address); err == nil && cached != zones.ResultUnresolved {
			writeJSON(w, http.StatusOK, map[string]string{"status": string(cached)})
			return
		}
	}

	requester := intake.Requester{
		AccountStatus:      req.ClientStatus,
		NewAddressForVisit: req.NewAddressForVisit,
	}
	gate := h.gateFor(sid)
	addr := req.Address
	gate.OnResult(func(res zones.Result) {
		if h.sessions == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.sessions.SaveZoneResult(ctx, sid, addr, res); err != nil {
			h.logger.Warn("failed to cache zone result", "error", err, "session", sid)
		}
	})

	// The lookup outlives this request: the gate fires after its quiet
	// period, long after the response below is written.
	gate.AddressChanged(context.WithoutCancel(r.Context()), requester, addr)

	// Policy short-circuits (on-file address, incomplete address) resolve
	// synchronously; everything else is pending until the debounce fires.
	if res := gate.Result(); res != zones.ResultUnresolved {
		if h.sessions != nil {
			if err := h.sessions.SaveZoneResult(r.Context(), sid, addr, res); err != nil {
				h.logger.Warn("failed to cache zone result", "error", err, "session", sid)
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": string(res)})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

// Result reports the resolved state for the given address, or pending.
// GET /api/intake/zone-check?line1=...&city=...&state=...&postalCode=...
func (h *ZoneHandler) Result(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		jsonError(w, sessionHeader+" header is required", http.StatusBadRequest)
		return
	}
	addr := addressFromQuery(r)

	if h.sessions != nil {
		res, err := h.sessions.ZoneResult(r.Context(), sid, addr)
		if err != nil {
			h.logger.Warn("zone result read failed", "error", err, "session", sid)
		} else if res != zones.ResultUnresolved {
			writeJSON(w, http.StatusOK, map[string]string{"status": string(res)})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}
