package intake

import "time"

// SlotPick is one appointment time the requester accepted from the offered
// candidates, normalized for the wire.
type SlotPick struct {
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	StartsAt     time.Time `json:"startsAt"`
	Display      string    `json:"display"`
	ProviderID   string    `json:"providerId,omitempty"`
	ProviderName string    `json:"providerName,omitempty"`
}

// SlotSelection is the outcome of the slot search step: the picks the
// requester accepted, or an explicit flag that none of the offered times
// worked.
type SlotSelection struct {
	Picks      []SlotPick
	NoneWorked bool
}

// Scheduling-skipped reasons recorded on the final request when no time
// could be proposed.
const (
	SkipReasonEndOfLife = "end_of_life_care"
	SkipReasonUrgent    = "urgent_callback"
	SkipReasonNoSlots   = "no_slots_found"
)

// ContactPayload is the requester's contact block on the wire.
type ContactPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	TextConsent bool   `json:"textConsent"`
}

// AppointmentRequest is the canonical record assembled once at submission
// and never mutated afterwards. Every optional field is applicable to the
// branch that produced it; non-applicable fields are omitted from the
// serialized form entirely, never emitted as nulls.
type AppointmentRequest struct {
	ClientStatus    AccountStatus  `json:"clientStatus"`
	Contact         ContactPayload `json:"contact"`
	PhysicalAddress Address        `json:"physicalAddress"`
	MailingAddress  *Address       `json:"mailingAddress,omitempty"`

	// Exactly one of the three animal shapes below is populated, matching
	// the household shape. Pets/AllPets/PetSpecificData belong to the
	// structured roster shapes, NewClientPets to brand-new clients,
	// PetInfoText to the unauthenticated free-text shape.
	Pets            []string        `json:"pets,omitempty"`
	AllPets         []Animal        `json:"allPets,omitempty"`
	PetSpecificData map[string]Need `json:"petSpecificData,omitempty"`
	NewClientPets   []Animal        `json:"newClientPets,omitempty"`
	PetInfoText     string          `json:"petInfoText,omitempty"`

	Urgency Urgency `json:"urgency"`

	// ManualSchedulingRequired marks the request for a human scheduler:
	// end-of-life care or a skip-search urgency.
	ManualSchedulingRequired bool `json:"manualSchedulingRequired,omitempty"`

	// SelectedDateTimePreferences holds the accepted slot picks. It is
	// always absent when ManualSchedulingRequired is true.
	SelectedDateTimePreferences []SlotPick `json:"selectedDateTimePreferences,omitempty"`
	NoneOfTheseWork             bool       `json:"noneOfTheseWork,omitempty"`
	SchedulingSkippedReason     string     `json:"schedulingSkippedReason,omitempty"`

	// EntryFlow records which flow the requester started in. Analytics only.
	EntryFlow   string    `json:"entryFlow"`
	SubmittedAt time.Time `json:"submittedAt"`
}
