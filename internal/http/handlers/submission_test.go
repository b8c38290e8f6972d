package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homevet/intake-platform/internal/http/middleware"
	"github.com/homevet/intake-platform/internal/intake"
)

type capturingStore struct {
	stored *intake.AppointmentRequest
	id     uuid.UUID
}

func (s *capturingStore) Insert(_ context.Context, req *intake.AppointmentRequest) (uuid.UUID, error) {
	s.stored = req
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	return s.id, nil
}

type capturingNotifier struct {
	notified []*intake.AppointmentRequest
}

func (n *capturingNotifier) Notify(_ context.Context, req *intake.AppointmentRequest) error {
	n.notified = append(n.notified, req)
	return nil
}

type countingSubmissionMetrics struct {
	flows   []string
	manuals []bool
}

func (m *countingSubmissionMetrics) ObserveSubmission(flow string, manual bool) {
	m.flows = append(m.flows, flow)
	m.manuals = append(m.manuals, manual)
}

func postSubmission(t *testing.T, h *SubmissionHandler, body submissionRequest, token string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/intake/requests", bytes.NewReader(payload))
	req.Header.Set(sessionHeader, "sess-submit")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mw := middleware.OptionalAccountJWT("secret")
	mw(http.HandlerFunc(h.Submit)).ServeHTTP(rec, req)
	return rec
}

func newClientSubmission() submissionRequest {
	return submissionRequest{
		ClientStatus: intake.AccountNew,
		Contact: intake.ContactPayload{
			FirstName: "Dana", LastName: "Reyes",
			Email: "dana@example.com", Phone: "+15550100",
		},
		PhysicalAddress: completeAddress(),
		Household: submissionHousehold{
			Shape: intake.ShapeNewPets,
			Pets: []submissionAnimal{{
				Animal: intake.Animal{
					PetID:   "local-1",
					Name:    "Biscuit",
					Species: intake.SpeciesRef{ID: "sp-1", Name: "Dog"},
				},
				Selected: true,
			}},
			Needs: map[string]intake.Need{
				"local-1": {Category: intake.NeedWellness},
			},
		},
		Urgency: intake.UrgencyThisWeek,
		Slots: &submissionSlots{
			Picks: []intake.SlotPick{{Date: "2026-09-03", Time: "10:00 AM"}},
		},
		EntryFlow: "new_client",
	}
}

func TestSubmitNewClient(t *testing.T) {
	store := &capturingStore{}
	notifier := &capturingNotifier{}
	metrics := &countingSubmissionMetrics{}
	h := NewSubmissionHandler(store, notifier, newTestSessions(t), metrics, nil)

	rec := postSubmission(t, h, newClientSubmission(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		ID      uuid.UUID                 `json:"id"`
		Request intake.AppointmentRequest `json:"request"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, store.id, body.ID)

	require.NotNil(t, store.stored)
	assert.Len(t, store.stored.NewClientPets, 1)
	assert.Empty(t, store.stored.Pets)
	assert.Empty(t, store.stored.PetInfoText)
	assert.False(t, store.stored.ManualSchedulingRequired)
	assert.Len(t, store.stored.SelectedDateTimePreferences, 1)

	assert.Equal(t, []string{"new_client"}, metrics.flows)
	assert.Equal(t, []bool{false}, metrics.manuals)
	assert.Len(t, notifier.notified, 1, "notifier decides internally; it is always invoked")
}

func TestSubmitEndOfLifeForcesManual(t *testing.T) {
	store := &capturingStore{}
	notifier := &capturingNotifier{}
	h := NewSubmissionHandler(store, notifier, newTestSessions(t), nil, nil)

	body := newClientSubmission()
	body.Household.Needs["local-1"] = intake.Need{
		Category:  intake.NeedEndOfLife,
		EndOfLife: &intake.EndOfLifeDetail{Reason: "declining quality of life"},
	}

	rec := postSubmission(t, h, body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, store.stored)
	assert.True(t, store.stored.ManualSchedulingRequired)
	assert.Equal(t, intake.SkipReasonEndOfLife, store.stored.SchedulingSkippedReason)
	assert.Empty(t, store.stored.SelectedDateTimePreferences, "picks never survive a manual routing")
	require.Len(t, notifier.notified, 1)
	assert.True(t, notifier.notified[0].ManualSchedulingRequired)
}

func TestSubmitRosterRequiresAuthentication(t *testing.T) {
	h := NewSubmissionHandler(&capturingStore{}, nil, newTestSessions(t), nil, nil)

	body := newClientSubmission()
	body.ClientStatus = intake.AccountExisting
	body.Household.Shape = intake.ShapeRoster
	body.EntryFlow = "returning_client"

	rec := postSubmission(t, h, body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSubmission(t, h, body, accountToken(t, "secret"))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSubmitUnknownUrgencyRejected(t *testing.T) {
	h := NewSubmissionHandler(&capturingStore{}, nil, newTestSessions(t), nil, nil)

	body := newClientSubmission()
	body.Urgency = "whenever"

	rec := postSubmission(t, h, body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitUnknownShapeRejected(t *testing.T) {
	h := NewSubmissionHandler(&capturingStore{}, nil, newTestSessions(t), nil, nil)

	body := newClientSubmission()
	body.Household.Shape = "carousel"

	rec := postSubmission(t, h, body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitGeneratesLocalPetIDs(t *testing.T) {
	store := &capturingStore{}
	h := NewSubmissionHandler(store, nil, newTestSessions(t), nil, nil)

	body := newClientSubmission()
	body.Household.Pets[0].Animal.PetID = ""
	body.Household.Needs = nil

	rec := postSubmission(t, h, body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.stored.NewClientPets, 1)
	assert.Regexp(t, `^new-\d+-[0-9a-f]+$`, store.stored.NewClientPets[0].PetID)
}
