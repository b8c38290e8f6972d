package intake

import "fmt"

// NeedCategory is the closed set of reasons an animal can be seen this visit.
type NeedCategory string

const (
	NeedWellness   NeedCategory = "wellness"
	NeedNewIllness NeedCategory = "new_illness"
	NeedFollowUp   NeedCategory = "follow_up"
	NeedTechnician NeedCategory = "technician"
	NeedEndOfLife  NeedCategory = "end_of_life"
)

// EndOfLifeDetail is the fixed sub-questionnaire attached to an end-of-life
// need. These answers go to the care team, never into slot scheduling.
type EndOfLifeDetail struct {
	Reason              string `json:"reason"`
	RecentCare          string `json:"recentCare"`
	OpenToAlternatives  bool   `json:"openToAlternatives"`
	AftercarePreference string `json:"aftercarePreference"`
}

// Need captures one animal's reason for the visit. Details carries the
// free-text elaboration some categories ask for. EndOfLife is set only when
// Category is NeedEndOfLife.
type Need struct {
	Category  NeedCategory     `json:"category"`
	Details   string           `json:"details,omitempty"`
	EndOfLife *EndOfLifeDetail `json:"endOfLife,omitempty"`
}

// Validate checks the category against the closed set and the end-of-life
// sub-questionnaire pairing in both directions.
func (n Need) Validate() error {
	switch n.Category {
	case NeedWellness, NeedNewIllness, NeedFollowUp, NeedTechnician:
		if n.EndOfLife != nil {
			return fmt.Errorf("intake: need category %q must not carry end-of-life answers", n.Category)
		}
		return nil
	case NeedEndOfLife:
		if n.EndOfLife == nil {
			return fmt.Errorf("intake: end-of-life need requires the sub-questionnaire")
		}
		return nil
	default:
		return fmt.Errorf("intake: unknown need category %q", n.Category)
	}
}

// ForceManualScheduling reports whether any animal in the household is
// flagged for end-of-life care. When true, no slot search runs and no time
// is proposed, regardless of the declared urgency; the request is marked for
// a human scheduler.
func ForceManualScheduling(needs []Need) bool {
	for _, n := range needs {
		if n.Category == NeedEndOfLife {
			return true
		}
	}
	return false
}
