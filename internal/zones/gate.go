// Package zones validates a requester's physical address against the
// practice's serviceable areas before any provider or slot lookup is
// attempted.
package zones

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/pkg/logging"
)

// Result classifies a zone check outcome. Only an explicit not-serviced
// determination blocks the flow; transient failures fail open.
type Result string

const (
	ResultUnresolved   Result = "unresolved"
	ResultServiced     Result = "serviced"
	ResultNotServiced  Result = "not_serviced"
	ResultInconclusive Result = "inconclusive"
)

// ErrNotServiced is the terminal user-facing state for the current address.
var ErrNotServiced = errors.New("zones: address is outside the service area")

// Checker performs the remote zone lookup.
type Checker interface {
	CheckZone(ctx context.Context, addr intake.Address) (Result, error)
}

// Metrics receives one observation per resolved check.
type Metrics interface {
	ObserveZoneCheck(result string)
}

const defaultQuietPeriod = 600 * time.Millisecond

// Gate debounces zone checks over an address that is being edited. A check
// fires only after the input has been stable for the quiet period, each edit
// cancels the in-flight lookup, and a result is applied only when it matches
// the latest input. Existing clients keeping their on-file address are never
// checked.
type Gate struct {
	checker Checker
	quiet   time.Duration
	logger  *logging.Logger
	metrics Metrics

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	seq     int
	result  Result
	applied func(Result) // test/UI hook, fires on every applied result
}

// NewGate builds a gate around the given checker. A non-positive quiet
// period gets the default.
func NewGate(checker Checker, quiet time.Duration, logger *logging.Logger, metrics Metrics) *Gate {
	if quiet <= 0 {
		quiet = defaultQuietPeriod
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		checker: checker,
		quiet:   quiet,
		logger:  logger,
		metrics: metrics,
		result:  ResultUnresolved,
	}
}

// OnResult registers a callback invoked with every applied result.
func (g *Gate) OnResult(fn func(Result)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.applied = fn
}

// AddressChanged feeds the gate a new edit of the address. The policy:
//   - requesters whose on-file address applies are never checked;
//   - structurally incomplete addresses are not checked (and not an error);
//   - complete addresses are checked once stable for the quiet period.
//
// Every edit invalidates the previous pending or in-flight check.
func (g *Gate) AddressChanged(ctx context.Context, r intake.Requester, addr intake.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.invalidateLocked()
	g.result = ResultUnresolved

	if !r.NeedsZoneCheck() {
		g.result = ResultServiced // validated at onboarding
		return
	}
	if !addr.Complete() {
		return
	}

	seq := g.seq
	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.timer = time.AfterFunc(g.quiet, func() {
		defer cancel()
		res, err := g.checker.CheckZone(runCtx, addr)
		if err != nil {
			if runCtx.Err() != nil {
				return // edit superseded this check
			}
			g.logger.Warn("zone check failed, failing open", "error", err, "postal_code", addr.PostalCode)
			res = ResultInconclusive
		}
		g.apply(seq, res)
	})
}

// apply records a resolved result unless a newer edit arrived meanwhile.
func (g *Gate) apply(seq int, res Result) {
	g.mu.Lock()
	if seq != g.seq {
		g.mu.Unlock()
		return
	}
	g.result = res
	fn := g.applied
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.ObserveZoneCheck(string(res))
	}
	if fn != nil {
		fn(res)
	}
}

func (g *Gate) invalidateLocked() {
	g.seq++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Result returns the current state for the latest address.
func (g *Gate) Result() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Blocked reports whether provider and slot lookups must not run: only an
// explicit not-serviced determination closes the gate. Unresolved and
// inconclusive states fail open.
func (g *Gate) Blocked() bool {
	return g.Result() == ResultNotServiced
}
