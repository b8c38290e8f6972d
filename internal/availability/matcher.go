// Package availability turns raw slot candidates from the scheduling backend
// into the bounded offer shown to the requester: one winner plus at most two
// alternates.
package availability

import (
	"time"
)

// Provider identifies who would take the appointment, when the backend says.
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Slot is a single normalized candidate: calendar date, local time, the full
// timestamp, and a display string ready for the form.
type Slot struct {
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	StartsAt time.Time `json:"startsAt"`
	Display  string    `json:"display"`
	Provider *Provider `json:"provider,omitempty"`
}

// SlotOffer is the bounded result: exactly one winner plus zero to two
// alternates, or empty when nothing was found or the request bypassed search.
type SlotOffer struct {
	Winner     *Slot  `json:"winner,omitempty"`
	Alternates []Slot `json:"alternates,omitempty"`
}

// Empty reports an explicit no-offer outcome.
func (o SlotOffer) Empty() bool { return o.Winner == nil }

const maxAlternates = 2

// RawCandidate is one backend-proposed start time. StartAt arrives as
// RFC 3339 with the practice's zone offset.
type RawCandidate struct {
	StartAt    time.Time `json:"startAt"`
	ProviderID string    `json:"providerId"`
	Provider   string    `json:"providerName"`
}

// RawResult covers both response shapes the backend produces: a flat
// candidates list, or a current-best plus alternates pair. When Candidates
// is non-empty it wins.
type RawResult struct {
	Candidates  []RawCandidate `json:"candidates"`
	CurrentBest *RawCandidate  `json:"currentBest"`
	Alternates  []RawCandidate `json:"alternates"`
}

// Match reshapes a raw result into a SlotOffer. Candidates are assumed
// pre-ordered by desirability; Match only truncates and normalizes, it never
// re-sorts. Anything past the first three candidates is discarded.
func Match(raw RawResult) SlotOffer {
	candidates := raw.Candidates
	if len(candidates) == 0 && raw.CurrentBest != nil {
		candidates = append([]RawCandidate{*raw.CurrentBest}, raw.Alternates...)
	}
	if len(candidates) == 0 {
		return SlotOffer{}
	}

	winner := normalize(candidates[0])
	offer := SlotOffer{Winner: &winner}
	for _, c := range candidates[1:] {
		if len(offer.Alternates) == maxAlternates {
			break
		}
		offer.Alternates = append(offer.Alternates, normalize(c))
	}
	return offer
}

func normalize(c RawCandidate) Slot {
	s := Slot{
		Date:     c.StartAt.Format("2006-01-02"),
		Time:     c.StartAt.Format("3:04 PM"),
		StartsAt: c.StartAt,
		Display:  c.StartAt.Format("Mon Jan 2 at 3:04 PM"),
	}
	if c.ProviderID != "" || c.Provider != "" {
		s.Provider = &Provider{ID: c.ProviderID, Name: c.Provider}
	}
	return s
}
