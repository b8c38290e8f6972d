package intake

import (
	"fmt"
	"time"
)

// BuildInput carries everything collected during the session that feeds the
// final record.
type BuildInput struct {
	Requester   Requester
	Household   Household
	Urgency     Urgency
	Slots       *SlotSelection // nil when no search ran or nothing came back
	EntryFlow   string
	SubmittedAt time.Time
}

// BuildAppointmentRequest assembles the canonical record. One mapping branch
// per household shape populates exactly the fields that shape allows; the
// scheduling block is resolved through the two-stage gate so a slot pick can
// never coexist with an end-of-life need or a skip-search urgency.
func BuildAppointmentRequest(in BuildInput) (*AppointmentRequest, error) {
	if err := validateShape(in.Requester, in.Household); err != nil {
		return nil, err
	}
	needs := SelectedNeeds(in.Household)
	for _, n := range needs {
		if err := n.Validate(); err != nil {
			return nil, err
		}
	}

	req := &AppointmentRequest{
		ClientStatus: in.Requester.AccountStatus,
		Contact: ContactPayload{
			FirstName:   in.Requester.FirstName,
			LastName:    in.Requester.LastName,
			Email:       in.Requester.Email,
			Phone:       in.Requester.Phone,
			TextConsent: in.Requester.TextConsent,
		},
		PhysicalAddress: in.Requester.PhysicalAddress,
		MailingAddress:  in.Requester.MailingAddress,
		Urgency:         in.Urgency,
		EntryFlow:       in.EntryFlow,
		SubmittedAt:     in.SubmittedAt,
	}

	switch h := in.Household.(type) {
	case *RosterHousehold:
		req.AllPets = h.Animals()
		req.Pets, req.PetSpecificData = rosterSelection(h.Animals(), h)
	case *RosterWithAdditionsHousehold:
		known, added := splitAdditions(h.Animals())
		req.AllPets = known
		req.NewClientPets = added
		req.Pets, req.PetSpecificData = rosterSelection(h.Animals(), h)
	case *FreeTextHousehold:
		req.PetInfoText = h.Description
	case *NewPetsHousehold:
		req.NewClientPets = h.Animals()
	default:
		return nil, fmt.Errorf("intake: unsupported household shape %q", in.Household.Shape())
	}

	search, _, err := ShouldSearch(needs, in.Urgency)
	if err != nil {
		return nil, err
	}
	switch {
	case !search:
		req.ManualSchedulingRequired = true
		if ForceManualScheduling(needs) {
			req.SchedulingSkippedReason = SkipReasonEndOfLife
		} else {
			req.SchedulingSkippedReason = SkipReasonUrgent
		}
	case in.Slots == nil || (len(in.Slots.Picks) == 0 && !in.Slots.NoneWorked):
		req.SchedulingSkippedReason = SkipReasonNoSlots
	case in.Slots.NoneWorked:
		req.NoneOfTheseWork = true
	default:
		req.SelectedDateTimePreferences = in.Slots.Picks
	}

	return req, nil
}

// rosterSelection builds the selected pet id list and the per-animal need
// map. Known selected animals contribute their record id; animals declared
// this request key the need map by their session-local id but never appear
// in the pets list.
func rosterSelection(roster []Animal, h Household) ([]string, map[string]Need) {
	var ids []string
	data := make(map[string]Need)
	for _, a := range roster {
		if !a.Selected {
			continue
		}
		if !a.NewThisRequest {
			ids = append(ids, a.PetID)
		}
		if n, ok := h.NeedFor(a.PetID); ok {
			data[a.PetID] = n
		}
	}
	if len(data) == 0 {
		data = nil
	}
	return ids, data
}

func splitAdditions(roster []Animal) (known, added []Animal) {
	for _, a := range roster {
		if a.NewThisRequest {
			added = append(added, a)
		} else {
			known = append(known, a)
		}
	}
	return known, added
}

// validateShape rejects household shapes that contradict the requester's
// account and authentication status, so forbidden field combinations cannot
// be produced downstream.
func validateShape(r Requester, h Household) error {
	switch h.Shape() {
	case ShapeRoster, ShapeRosterWithAdditions:
		if r.AccountStatus != AccountExisting || !r.Authenticated {
			return fmt.Errorf("intake: shape %q requires an authenticated existing client", h.Shape())
		}
	case ShapeFreeText:
		if r.AccountStatus != AccountExisting || r.Authenticated {
			return fmt.Errorf("intake: free-text shape is for unauthenticated returning clients")
		}
	case ShapeNewPets:
		if r.AccountStatus != AccountNew {
			return fmt.Errorf("intake: new-pets shape requires a new client")
		}
	default:
		return fmt.Errorf("intake: unknown household shape %q", h.Shape())
	}
	if r.MailingAddress != nil && *r.MailingAddress == r.PhysicalAddress {
		return fmt.Errorf("intake: mailing address must be omitted when identical to physical address")
	}
	return nil
}
