package availability

import (
	"context"
	"sync"

	"github.com/homevet/intake-platform/pkg/logging"
)

// SearchRequest bounds one slot search. Start and Days come from the urgency
// window, DurationMinutes from the derived visit estimate.
type SearchRequest struct {
	PracticeID      string
	StartDaysOut    int
	Days            int
	DurationMinutes int
	PostalCode      string
	Line1           string
	City            string
	State           string
	ProviderID      string // optional specific-provider constraint
}

// Backend is the scheduling system's slot search call.
type Backend interface {
	SearchSlots(ctx context.Context, req SearchRequest) (RawResult, error)
}

// Searcher issues slot searches with cancel-on-edit semantics: each Refresh
// cancels the previous in-flight search, and a result is applied only if its
// request is still the latest one. The resolved offer is cached until the
// next Refresh.
type Searcher struct {
	backend Backend
	logger  *logging.Logger

	mu     sync.Mutex
	seq    int
	cancel context.CancelFunc
	offer  *SlotOffer
}

func NewSearcher(backend Backend, logger *logging.Logger) *Searcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Searcher{backend: backend, logger: logger}
}

// Refresh starts a new search for req, superseding any in-flight one. The
// done callback (optional) fires once with the applied offer, or nil when a
// stale result was dropped or the backend failed. Backend failures are
// non-fatal: the offer is left unresolved, never substituted with stale data.
func (s *Searcher) Refresh(ctx context.Context, req SearchRequest, done func(*SlotOffer)) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.offer = nil
	s.mu.Unlock()

	go func() {
		defer cancel()
		raw, err := s.backend.SearchSlots(ctx, req)

		s.mu.Lock()
		stale := seq != s.seq
		var applied *SlotOffer
		if !stale && err == nil {
			offer := Match(raw)
			s.offer = &offer
			applied = &offer
		}
		s.mu.Unlock()

		if err != nil && ctx.Err() == nil {
			s.logger.Warn("slot search failed", "error", err, "practice_id", req.PracticeID)
		}
		if stale {
			s.logger.Debug("slot search result dropped as stale", "seq", seq)
		}
		if done != nil {
			done(applied)
		}
	}()
}

// Offer returns the cached result of the most recent completed search, or
// nil while unresolved.
func (s *Searcher) Offer() *SlotOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offer
}
