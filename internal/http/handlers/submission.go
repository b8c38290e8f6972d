package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/homevet/intake-platform/internal/http/middleware"
	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/session"
	"github.com/homevet/intake-platform/pkg/logging"
)

// RequestStore persists the canonical appointment request.
type RequestStore interface {
	Insert(ctx context.Context, req *intake.AppointmentRequest) (uuid.UUID, error)
}

// FollowUpSender notifies the practice about manually scheduled requests.
type FollowUpSender interface {
	Notify(ctx context.Context, req *intake.AppointmentRequest) error
}

// SubmissionMetrics counts completed submissions.
type SubmissionMetrics interface {
	ObserveSubmission(flow string, manual bool)
}

// SubmissionHandler assembles, validates, and persists the final request.
type SubmissionHandler struct {
	store    RequestStore
	notifier FollowUpSender
	sessions *session.Store
	metrics  SubmissionMetrics
	logger   *logging.Logger
}

func NewSubmissionHandler(store RequestStore, notifier FollowUpSender, sessions *session.Store, metrics SubmissionMetrics, logger *logging.Logger) *SubmissionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SubmissionHandler{
		store:    store,
		notifier: notifier,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
}

// submissionAnimal wraps the wire animal with the selection flag, which is
// session state rather than part of the canonical record.
type submissionAnimal struct {
	intake.Animal
	Selected bool `json:"selected"`
}

// submissionHousehold is the wire form of the four household shapes. Shape
// decides which of the remaining fields apply.
type submissionHousehold struct {
	Shape       intake.HouseholdShape  `json:"shape"`
	Pets        []submissionAnimal     `json:"pets"`
	Added       []submissionAnimal     `json:"added"`
	Needs       map[string]intake.Need `json:"needs"`
	Description string                 `json:"description"`
}

type submissionSlots struct {
	Picks           []intake.SlotPick `json:"picks"`
	NoneOfTheseWork bool              `json:"noneOfTheseWork"`
}

type submissionRequest struct {
	ClientStatus       intake.AccountStatus  `json:"clientStatus"`
	Contact            intake.ContactPayload `json:"contact"`
	PhysicalAddress    intake.Address        `json:"physicalAddress"`
	MailingAddress     *intake.Address       `json:"mailingAddress"`
	NewAddressForVisit bool                  `json:"newAddressForVisit"`
	Household          submissionHousehold   `json:"household"`
	Urgency            intake.Urgency        `json:"urgency"`
	Slots              *submissionSlots      `json:"slots"`
	EntryFlow          string                `json:"entryFlow"`
}

// Submit builds and stores the canonical appointment request.
// POST /api/intake/requests
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	household, err := buildHousehold(req.Household, now)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	requester := intake.Requester{
		AccountStatus:      req.ClientStatus,
		Authenticated:      middleware.AccountIDFromContext(r.Context()) != "",
		FirstName:          req.Contact.FirstName,
		LastName:           req.Contact.LastName,
		Email:              req.Contact.Email,
		Phone:              req.Contact.Phone,
		TextConsent:        req.Contact.TextConsent,
		PhysicalAddress:    req.PhysicalAddress,
		MailingAddress:     req.MailingAddress,
		NewAddressForVisit: req.NewAddressForVisit,
	}

	in := intake.BuildInput{
		Requester:   requester,
		Household:   household,
		Urgency:     req.Urgency,
		EntryFlow:   req.EntryFlow,
		SubmittedAt: now,
	}
	if req.Slots != nil {
		in.Slots = &intake.SlotSelection{
			Picks:      req.Slots.Picks,
			NoneWorked: req.Slots.NoneOfTheseWork,
		}
	}

	record, err := intake.BuildAppointmentRequest(in)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.store.Insert(r.Context(), record)
	if err != nil {
		h.logger.Error("failed to persist appointment request", "error", err)
		jsonError(w, "failed to store request", http.StatusInternalServerError)
		return
	}

	if h.notifier != nil {
		if err := h.notifier.Notify(r.Context(), record); err != nil {
			// The request is stored; the scheduler notification is retried
			// out of band, never at the requester's expense.
			h.logger.Warn("follow-up notification failed", "error", err, "request_id", id)
		}
	}
	if h.metrics != nil {
		h.metrics.ObserveSubmission(record.EntryFlow, record.ManualSchedulingRequired)
	}
	if sid := sessionID(r); sid != "" && h.sessions != nil {
		if err := h.sessions.ClearSlotOffer(r.Context(), sid); err != nil {
			h.logger.Warn("failed to clear slot offer", "error", err, "session", sid)
		}
	}

	h.logger.Info("appointment request submitted",
		"request_id", id,
		"entry_flow", record.EntryFlow,
		"manual", record.ManualSchedulingRequired,
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"request": record,
	})
}

// buildHousehold maps the wire household onto its domain shape. Animals
// declared in this request get a session-local id when the client did not
// assign one.
func buildHousehold(in submissionHousehold, now time.Time) (intake.Household, error) {
	toAnimals := func(dtos []submissionAnimal, declared bool) []intake.Animal {
		out := make([]intake.Animal, 0, len(dtos))
		for _, d := range dtos {
			a := d.Animal
			a.Selected = d.Selected
			if declared && a.PetID == "" {
				a.PetID = intake.NewLocalPetID(now)
			}
			out = append(out, a)
		}
		return out
	}

	switch in.Shape {
	case intake.ShapeRoster:
		return &intake.RosterHousehold{
			Pets:  toAnimals(in.Pets, false),
			Needs: in.Needs,
		}, nil
	case intake.ShapeRosterWithAdditions:
		return &intake.RosterWithAdditionsHousehold{
			Pets:  toAnimals(in.Pets, false),
			Added: toAnimals(in.Added, true),
			Needs: in.Needs,
		}, nil
	case intake.ShapeFreeText:
		return &intake.FreeTextHousehold{Description: in.Description}, nil
	case intake.ShapeNewPets:
		return &intake.NewPetsHousehold{
			Pets:  toAnimals(in.Pets, true),
			Needs: in.Needs,
		}, nil
	default:
		return nil, fmt.Errorf("unknown household shape %q", in.Shape)
	}
}
