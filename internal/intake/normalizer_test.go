package intake

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submittedAt = time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

func existingAuthedRequester() Requester {
	return Requester{
		AccountStatus: AccountExisting,
		Authenticated: true,
		FirstName:     "Dana",
		LastName:      "Reyes",
		Email:         "dana@example.com",
		Phone:         "+15550100",
		TextConsent:   true,
		PhysicalAddress: Address{
			Line1: "12 Alder Ct", City: "Portland", State: "OR", PostalCode: "97211",
		},
	}
}

func newRequester() Requester {
	r := existingAuthedRequester()
	r.AccountStatus = AccountNew
	r.Authenticated = false
	return r
}

// serializedKeys returns the top-level key set of the wire form, the thing
// the omit-not-null contract is about.
func serializedKeys(t *testing.T, req *AppointmentRequest) map[string]struct{} {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	keys := make(map[string]struct{}, len(m))
	for k := range m {
		keys[k] = struct{}{}
	}
	return keys
}

func TestBuildAppointmentRequest_RosterShape(t *testing.T) {
	in := BuildInput{
		Requester: existingAuthedRequester(),
		Household: &RosterHousehold{
			Pets:  []Animal{{PetID: "pet-1", Name: "Biscuit", Selected: true}},
			Needs: map[string]Need{"pet-1": {Category: NeedWellness}},
		},
		Urgency: UrgencyThisWeek,
		Slots: &SlotSelection{Picks: []SlotPick{{
			Date: "2026-08-27", Time: "10:00 AM",
			StartsAt: time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC),
			Display:  "Thu Aug 27 at 10:00 AM",
		}}},
		EntryFlow:   "returning_client",
		SubmittedAt: submittedAt,
	}

	req, err := BuildAppointmentRequest(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"pet-1"}, req.Pets)
	assert.Len(t, req.AllPets, 1)
	require.Contains(t, req.PetSpecificData, "pet-1")
	assert.Equal(t, NeedWellness, req.PetSpecificData["pet-1"].Category)
	assert.Len(t, req.SelectedDateTimePreferences, 1)

	keys := serializedKeys(t, req)
	assert.Contains(t, keys, "pets")
	assert.Contains(t, keys, "allPets")
	assert.Contains(t, keys, "petSpecificData")
	assert.NotContains(t, keys, "newClientPets")
	assert.NotContains(t, keys, "petInfoText")
	assert.NotContains(t, keys, "manualSchedulingRequired")
	assert.NotContains(t, keys, "mailingAddress")
}

func TestBuildAppointmentRequest_RosterWithAdditions(t *testing.T) {
	localID := NewLocalPetID(submittedAt)
	in := BuildInput{
		Requester: existingAuthedRequester(),
		Household: &RosterWithAdditionsHousehold{
			Pets:  []Animal{{PetID: "pet-1", Name: "Biscuit", Selected: true}},
			Added: []Animal{{PetID: localID, Name: "Pickle"}},
			Needs: map[string]Need{
				"pet-1":  {Category: NeedWellness},
				localID: {Category: NeedNewIllness, Details: "ear scratching"},
			},
		},
		Urgency:     UrgencyWithinMonth,
		Slots:       &SlotSelection{NoneWorked: true},
		EntryFlow:   "returning_client",
		SubmittedAt: submittedAt,
	}

	req, err := BuildAppointmentRequest(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"pet-1"}, req.Pets, "session-local ids never enter the pets list")
	require.Len(t, req.NewClientPets, 1)
	assert.Equal(t, localID, req.NewClientPets[0].PetID)
	assert.Contains(t, req.PetSpecificData, localID)
	assert.True(t, req.NoneOfTheseWork)
	assert.Empty(t, req.SelectedDateTimePreferences)

	keys := serializedKeys(t, req)
	assert.Contains(t, keys, "newClientPets")
	assert.NotContains(t, keys, "petInfoText")
	assert.NotContains(t, keys, "selectedDateTimePreferences")
}

func TestBuildAppointmentRequest_FreeTextShape(t *testing.T) {
	r := existingAuthedRequester()
	r.Authenticated = false

	req, err := BuildAppointmentRequest(BuildInput{
		Requester:   r,
		Household:   &FreeTextHousehold{Description: "two senior cats, both due for checkups"},
		Urgency:     UrgencyThreeMonths,
		Slots:       &SlotSelection{Picks: []SlotPick{{Date: "2026-11-12", Time: "2:00 PM", Display: "Thu Nov 12 at 2:00 PM"}}},
		EntryFlow:   "returning_unauthenticated",
		SubmittedAt: submittedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, "two senior cats, both due for checkups", req.PetInfoText)

	keys := serializedKeys(t, req)
	assert.Contains(t, keys, "petInfoText")
	assert.NotContains(t, keys, "pets")
	assert.NotContains(t, keys, "allPets")
	assert.NotContains(t, keys, "petSpecificData")
	assert.NotContains(t, keys, "newClientPets")
}

func TestBuildAppointmentRequest_NewPetsShape(t *testing.T) {
	req, err := BuildAppointmentRequest(BuildInput{
		Requester: newRequester(),
		Household: &NewPetsHousehold{
			Pets:  []Animal{{PetID: "new-1", Name: "Waffles"}},
			Needs: map[string]Need{"new-1": {Category: NeedWellness}},
		},
		Urgency:     UrgencySixMonths,
		EntryFlow:   "new_client",
		SubmittedAt: submittedAt,
	})
	require.NoError(t, err)

	require.Len(t, req.NewClientPets, 1)
	assert.Equal(t, SkipReasonNoSlots, req.SchedulingSkippedReason, "search allowed but nothing accepted")

	keys := serializedKeys(t, req)
	assert.Contains(t, keys, "newClientPets")
	assert.NotContains(t, keys, "pets")
	assert.NotContains(t, keys, "petSpecificData")
	assert.NotContains(t, keys, "petInfoText")
}

func TestBuildAppointmentRequest_EndOfLifeSuppressesSlots(t *testing.T) {
	// The override wins for every urgency, including ones that would search.
	for _, u := range []Urgency{UrgencySameDay, UrgencyThisWeek, UrgencyTwelveMonths} {
		t.Run(string(u), func(t *testing.T) {
			in := BuildInput{
				Requester: existingAuthedRequester(),
				Household: &RosterHousehold{
					Pets: []Animal{{PetID: "pet-1", Name: "Biscuit", Selected: true}},
					Needs: map[string]Need{"pet-1": {
						Category:  NeedEndOfLife,
						EndOfLife: &EndOfLifeDetail{Reason: "declining quality of life", AftercarePreference: "home burial"},
					}},
				},
				Urgency: u,
				// Even if a stray selection leaks in, it must not be recorded.
				Slots:       &SlotSelection{Picks: []SlotPick{{Date: "2026-08-27"}}},
				EntryFlow:   "returning_client",
				SubmittedAt: submittedAt,
			}

			req, err := BuildAppointmentRequest(in)
			require.NoError(t, err)

			assert.True(t, req.ManualSchedulingRequired)
			assert.Equal(t, SkipReasonEndOfLife, req.SchedulingSkippedReason)
			assert.Nil(t, req.SelectedDateTimePreferences)
			assert.NotContains(t, serializedKeys(t, req), "selectedDateTimePreferences")
		})
	}
}

func TestBuildAppointmentRequest_SkipSearchUrgencies(t *testing.T) {
	for _, u := range []Urgency{UrgencySameDay, UrgencyWithin48h} {
		t.Run(string(u), func(t *testing.T) {
			req, err := BuildAppointmentRequest(BuildInput{
				Requester: existingAuthedRequester(),
				Household: &RosterHousehold{
					Pets:  []Animal{{PetID: "pet-1", Selected: true}},
					Needs: map[string]Need{"pet-1": {Category: NeedNewIllness, Details: "vomiting"}},
				},
				Urgency:     u,
				EntryFlow:   "returning_client",
				SubmittedAt: submittedAt,
			})
			require.NoError(t, err)

			assert.True(t, req.ManualSchedulingRequired)
			assert.Equal(t, SkipReasonUrgent, req.SchedulingSkippedReason)
			assert.NotContains(t, serializedKeys(t, req), "selectedDateTimePreferences")
		})
	}
}

func TestBuildAppointmentRequest_ShapeValidation(t *testing.T) {
	roster := &RosterHousehold{Pets: []Animal{{PetID: "pet-1", Selected: true}}, Needs: map[string]Need{"pet-1": {Category: NeedWellness}}}

	t.Run("roster requires authentication", func(t *testing.T) {
		r := existingAuthedRequester()
		r.Authenticated = false
		_, err := BuildAppointmentRequest(BuildInput{Requester: r, Household: roster, Urgency: UrgencyThisWeek, SubmittedAt: submittedAt})
		assert.Error(t, err)
	})

	t.Run("free text rejected for authenticated client", func(t *testing.T) {
		_, err := BuildAppointmentRequest(BuildInput{
			Requester:   existingAuthedRequester(),
			Household:   &FreeTextHousehold{Description: "a dog"},
			Urgency:     UrgencyThisWeek,
			SubmittedAt: submittedAt,
		})
		assert.Error(t, err)
	})

	t.Run("new pets rejected for existing client", func(t *testing.T) {
		_, err := BuildAppointmentRequest(BuildInput{
			Requester:   existingAuthedRequester(),
			Household:   &NewPetsHousehold{Pets: []Animal{{PetID: "new-1"}}},
			Urgency:     UrgencyThisWeek,
			SubmittedAt: submittedAt,
		})
		assert.Error(t, err)
	})

	t.Run("identical mailing address rejected", func(t *testing.T) {
		r := existingAuthedRequester()
		addr := r.PhysicalAddress
		r.MailingAddress = &addr
		_, err := BuildAppointmentRequest(BuildInput{Requester: r, Household: roster, Urgency: UrgencyThisWeek, SubmittedAt: submittedAt})
		assert.Error(t, err)
	})

	t.Run("invalid need propagates", func(t *testing.T) {
		h := &RosterHousehold{
			Pets:  []Animal{{PetID: "pet-1", Selected: true}},
			Needs: map[string]Need{"pet-1": {Category: NeedEndOfLife}},
		}
		_, err := BuildAppointmentRequest(BuildInput{Requester: existingAuthedRequester(), Household: h, Urgency: UrgencyThisWeek, SubmittedAt: submittedAt})
		assert.Error(t, err)
	})
}
