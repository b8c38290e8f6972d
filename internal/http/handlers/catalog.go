package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/homevet/intake-platform/internal/catalog"
	"github.com/homevet/intake-platform/internal/http/middleware"
	"github.com/homevet/intake-platform/internal/vetdata"
	"github.com/homevet/intake-platform/pkg/logging"
)

// CatalogSource answers the form's dropdown lookups.
type CatalogSource interface {
	Species(ctx context.Context, practiceID string) ([]vetdata.CatalogItem, error)
	Breeds(ctx context.Context, practiceID, speciesID string) ([]vetdata.Breed, error)
	AppointmentCategories(ctx context.Context, practiceID string, authenticated bool) ([]vetdata.AppointmentCategory, error)
}

// CatalogHandler serves species, breed, and appointment-category lookups.
type CatalogHandler struct {
	source     CatalogSource
	practiceID string
	logger     *logging.Logger
}

func NewCatalogHandler(source CatalogSource, practiceID string, logger *logging.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogHandler{source: source, practiceID: practiceID, logger: logger}
}

// Species lists the practice's species catalog.
// GET /api/intake/catalog/species
func (h *CatalogHandler) Species(w http.ResponseWriter, r *http.Request) {
	species, err := h.source.Species(r.Context(), h.practiceID)
	if err != nil {
		h.logger.Error("species lookup failed", "error", err)
		jsonError(w, "species catalog unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"species": species})
}

// Breeds lists the breeds for a chosen species. Requesting breeds before a
// species is chosen is a client sequencing error.
// GET /api/intake/catalog/breeds?speciesId={id}
func (h *CatalogHandler) Breeds(w http.ResponseWriter, r *http.Request) {
	speciesID := r.URL.Query().Get("speciesId")
	breeds, err := h.source.Breeds(r.Context(), h.practiceID, speciesID)
	if errors.Is(err, catalog.ErrNoSpeciesSelected) {
		jsonError(w, "speciesId is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("breed lookup failed", "error", err, "species_id", speciesID)
		jsonError(w, "breed catalog unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"breeds": breeds})
}

// AppointmentCategories lists the visit types the requester may pick from.
// Authenticated account holders see the returning-patient category family.
// GET /api/intake/catalog/appointment-categories
func (h *CatalogHandler) AppointmentCategories(w http.ResponseWriter, r *http.Request) {
	authenticated := middleware.AccountIDFromContext(r.Context()) != ""
	cats, err := h.source.AppointmentCategories(r.Context(), h.practiceID, authenticated)
	if err != nil {
		h.logger.Error("appointment category lookup failed", "error", err)
		jsonError(w, "appointment categories unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointmentCategories": cats})
}
