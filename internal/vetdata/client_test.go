package vetdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homevet/intake-platform/internal/availability"
	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/zones"
)

func testAddr() intake.Address {
	return intake.Address{Line1: "12 Alder Ct", City: "Portland", State: "OR", PostalCode: "97211"}
}

func TestListSpecies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/practices/prac-1/species", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]CatalogItem{
			{ID: "sp-1", Name: "Dog"},
			{ID: "sp-2", Name: "Cat"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", nil)
	species, err := c.ListSpecies(context.Background(), "prac-1")
	require.NoError(t, err)
	require.Len(t, species, 2)
	assert.Equal(t, "Dog", species[0].Name)
}

func TestListSpecies_EmptyCatalogIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	_, err := c.ListSpecies(context.Background(), "prac-1")
	assert.Error(t, err, "an empty catalog must surface, not silently default")
}

func TestListBreeds_ScopedToSpecies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/practices/prac-1/species/sp-1/breeds", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Breed{{ID: "br-9", Name: "Whippet", Species: "sp-1"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	breeds, err := c.ListBreeds(context.Background(), "prac-1", "sp-1")
	require.NoError(t, err)
	require.Len(t, breeds, 1)
	assert.Equal(t, "Whippet", breeds[0].Name)
}

func TestListAppointmentCategories_EndpointFamily(t *testing.T) {
	var gotAudience string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAudience = r.URL.Query().Get("audience")
		_ = json.NewEncoder(w).Encode([]AppointmentCategory{{ID: "cat-1", Name: "Wellness exam", NewPatientEligible: true}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)

	_, err := c.ListAppointmentCategories(context.Background(), "prac-1", true)
	require.NoError(t, err)
	assert.Equal(t, "client", gotAudience)

	_, err = c.ListAppointmentCategories(context.Background(), "prac-1", false)
	require.NoError(t, err)
	assert.Equal(t, "public", gotAudience)
}

func TestCheckZone(t *testing.T) {
	tests := []struct {
		name     string
		serviced bool
		want     zones.Result
	}{
		{"serviced", true, zones.ResultServiced},
		{"not serviced", false, zones.ResultNotServiced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/zones/check", r.URL.Path)
				var req zoneCheckRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "97211", req.PostalCode)
				_ = json.NewEncoder(w).Encode(zoneCheckResponse{Serviced: tt.serviced})
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", nil)
			res, err := c.CheckZone(context.Background(), testAddr())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestCheckZone_TransportFailureIsInconclusive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	res, err := c.CheckZone(context.Background(), testAddr())
	assert.Error(t, err)
	assert.Equal(t, zones.ResultInconclusive, res)
}

func TestListProviders_FiltersOnZoneData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "97211", r.URL.Query().Get("postalCode"))
		_ = json.NewEncoder(w).Encode([]Provider{
			{ID: "vet-1", Name: "Dr. Okafor", AcceptingNewPatients: true, HasZoneData: true},
			{ID: "vet-2", Name: "Dr. Lind", AcceptingNewPatients: false, HasZoneData: true},
			{ID: "vet-3", Name: "Dr. Mercer", HasZoneData: false},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	providers, err := c.ListProviders(context.Background(), "prac-1", testAddr())
	require.NoError(t, err)

	require.Len(t, providers, 2)
	assert.Equal(t, "vet-1", providers[0].ID)
	assert.Equal(t, "vet-3", providers[1].ID, "providers without zone data are included by default")
}

func TestSearchSlots(t *testing.T) {
	start := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/practices/prac-1/slots/search", r.URL.Path)
		var req slotSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.StartDaysOut)
		assert.Equal(t, 7, req.Days)
		assert.Equal(t, 60, req.DurationMinutes)
		_ = json.NewEncoder(w).Encode(availability.RawResult{
			Candidates: []availability.RawCandidate{{StartAt: start, ProviderID: "vet-1"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	raw, err := c.SearchSlots(context.Background(), availability.SearchRequest{
		PracticeID:      "prac-1",
		StartDaysOut:    1,
		Days:            7,
		DurationMinutes: 60,
		PostalCode:      "97211",
	})
	require.NoError(t, err)
	require.Len(t, raw.Candidates, 1)
	assert.True(t, raw.Candidates[0].StartAt.Equal(start))
}
