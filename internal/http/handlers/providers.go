package handlers

import (
	"context"
	"net/http"

	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/session"
	"github.com/homevet/intake-platform/internal/vetdata"
	"github.com/homevet/intake-platform/internal/zones"
	"github.com/homevet/intake-platform/pkg/logging"
)

// ProviderLister returns the providers serving an address.
type ProviderLister interface {
	ListProviders(ctx context.Context, practiceID string, addr intake.Address) ([]vetdata.Provider, error)
}

// ProvidersHandler lists the providers a requester may choose from. The zone
// gate applies: a not-serviced address gets no provider list.
type ProvidersHandler struct {
	lister     ProviderLister
	sessions   *session.Store
	practiceID string
	logger     *logging.Logger
}

func NewProvidersHandler(lister ProviderLister, sessions *session.Store, practiceID string, logger *logging.Logger) *ProvidersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProvidersHandler{lister: lister, sessions: sessions, practiceID: practiceID, logger: logger}
}

// List returns providers accepting appointments at the given address.
// GET /api/intake/providers?line1=...&city=...&state=...&postalCode=...
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		jsonError(w, sessionHeader+" header is required", http.StatusBadRequest)
		return
	}
	addr := addressFromQuery(r)
	if !addr.Complete() {
		jsonError(w, "a complete address is required", http.StatusBadRequest)
		return
	}

	if h.sessions != nil {
		res, err := h.sessions.ZoneResult(r.Context(), sid, addr)
		if err != nil {
			h.logger.Warn("zone result read failed, failing open", "error", err, "session", sid)
		} else if res == zones.ResultNotServiced {
			jsonError(w, "address is outside the service area", http.StatusConflict)
			return
		}
	}

	providers, err := h.lister.ListProviders(r.Context(), h.practiceID, addr)
	if err != nil {
		h.logger.Error("provider lookup failed", "error", err)
		jsonError(w, "provider list unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}
