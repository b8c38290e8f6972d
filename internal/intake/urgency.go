// Package intake implements the appointment intake rule engine: the
// household/urgency answers collected from a requester are turned into a
// single canonical appointment request and a decision about whether (and in
// what window) to search for open time slots.
package intake

import "errors"

// Urgency is the single household-level urgency answer. It is a closed set;
// values outside it are rejected rather than defaulted.
type Urgency string

const (
	UrgencySameDay      Urgency = "same_day"
	UrgencyWithin48h    Urgency = "24_48_hours"
	UrgencyThisWeek     Urgency = "this_week"
	UrgencyThreeWeeks   Urgency = "3_4_weeks"
	UrgencyWithinMonth  Urgency = "within_month"
	UrgencyThreeMonths  Urgency = "3_months"
	UrgencySixMonths    Urgency = "6_months"
	UrgencyTwelveMonths Urgency = "12_months"
)

// ErrUnknownUrgency is returned for any urgency value outside the closed set.
var ErrUnknownUrgency = errors.New("intake: unknown urgency value")

// SearchWindow bounds a slot search in day offsets from today (day 0,
// inclusive on both ends). SkipSearch means no search runs at all and the
// request is routed to a human scheduler.
type SearchWindow struct {
	SkipSearch bool
	StartDays  int
	EndDays    int
}

// Days returns the number of days covered by the window, inclusive.
func (w SearchWindow) Days() int {
	if w.SkipSearch {
		return 0
	}
	return w.EndDays - w.StartDays + 1
}

var urgencyWindows = map[Urgency]SearchWindow{
	UrgencySameDay:      {SkipSearch: true},
	UrgencyWithin48h:    {SkipSearch: true},
	UrgencyThisWeek:     {StartDays: 1, EndDays: 7},
	UrgencyThreeWeeks:   {StartDays: 21, EndDays: 35},
	UrgencyWithinMonth:  {StartDays: 4, EndDays: 42},
	UrgencyThreeMonths:  {StartDays: 75, EndDays: 105},
	UrgencySixMonths:    {StartDays: 135, EndDays: 165},
	UrgencyTwelveMonths: {StartDays: 345, EndDays: 365},
}

// WindowFor maps an urgency answer to its search window. Same-day and
// 24-48 hour requests never search; the practice calls the client back
// instead.
func WindowFor(u Urgency) (SearchWindow, error) {
	w, ok := urgencyWindows[u]
	if !ok {
		return SearchWindow{}, ErrUnknownUrgency
	}
	return w, nil
}

// ShouldSearch composes the end-of-life override with the urgency window.
// The override is checked first and wins regardless of the declared urgency.
// The second return value is the window to search when the first is true.
func ShouldSearch(needs []Need, u Urgency) (bool, SearchWindow, error) {
	w, err := WindowFor(u)
	if err != nil {
		return false, SearchWindow{}, err
	}
	if ForceManualScheduling(needs) || w.SkipSearch {
		return false, w, nil
	}
	return true, w, nil
}
