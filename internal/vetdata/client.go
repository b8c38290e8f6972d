// Package vetdata is the HTTP client for the practice's scheduling backend:
// catalog lookups, zone validation, provider listing, and slot search.
package vetdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/homevet/intake-platform/internal/availability"
	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/zones"
	"github.com/homevet/intake-platform/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client talks to the scheduling backend's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
}

// NewClient builds a client for the given backend base URL.
func NewClient(baseURL, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
		tracer: otel.Tracer("vetdata"),
	}
}

// ListSpecies returns the practice's species catalog.
func (c *Client) ListSpecies(ctx context.Context, practiceID string) ([]CatalogItem, error) {
	var out []CatalogItem
	err := c.get(ctx, "vetdata.list_species",
		fmt.Sprintf("/v1/practices/%s/species", url.PathEscape(practiceID)), &out)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("vetdata: species catalog is empty for practice %s", practiceID)
	}
	return out, nil
}

// ListBreeds returns the breeds for one species. Callers only invoke this
// once a species has been chosen.
func (c *Client) ListBreeds(ctx context.Context, practiceID, speciesID string) ([]Breed, error) {
	var out []Breed
	err := c.get(ctx, "vetdata.list_breeds",
		fmt.Sprintf("/v1/practices/%s/species/%s/breeds",
			url.PathEscape(practiceID), url.PathEscape(speciesID)), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAppointmentCategories returns the appointment types eligible for the
// intake form. Authenticated clients hit the client endpoint family, which
// includes returning-patient-only categories.
func (c *Client) ListAppointmentCategories(ctx context.Context, practiceID string, authenticated bool) ([]AppointmentCategory, error) {
	family := "public"
	if authenticated {
		family = "client"
	}
	var out []AppointmentCategory
	err := c.get(ctx, "vetdata.list_appointment_categories",
		fmt.Sprintf("/v1/practices/%s/appointment-categories?audience=%s",
			url.PathEscape(practiceID), family), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// zoneCheckRequest and zoneCheckResponse are the zone validation wire shapes.
type zoneCheckRequest struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type zoneCheckResponse struct {
	Serviced bool `json:"serviced"`
}

// CheckZone validates an address against the practice's serviceable zones.
// It satisfies zones.Checker. Transport errors surface to the gate, which
// treats them as inconclusive.
func (c *Client) CheckZone(ctx context.Context, addr intake.Address) (zones.Result, error) {
	body := zoneCheckRequest{
		Line1:      addr.Line1,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
	}
	var resp zoneCheckResponse
	if err := c.post(ctx, "vetdata.check_zone", "/v1/zones/check", body, &resp); err != nil {
		return zones.ResultInconclusive, err
	}
	if !resp.Serviced {
		return zones.ResultNotServiced, nil
	}
	return zones.ResultServiced, nil
}

// ListProviders returns providers serving the given address, filtered to
// those accepting new patients in the matched zone when that information is
// available. Providers lacking zone data are included by default.
func (c *Client) ListProviders(ctx context.Context, practiceID string, addr intake.Address) ([]Provider, error) {
	var out []Provider
	err := c.get(ctx, "vetdata.list_providers",
		fmt.Sprintf("/v1/practices/%s/providers?postalCode=%s",
			url.PathEscape(practiceID), url.QueryEscape(addr.PostalCode)), &out)
	if err != nil {
		return nil, err
	}
	filtered := out[:0]
	for _, p := range out {
		if p.HasZoneData && !p.AcceptingNewPatients {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

// slotSearchRequest is the slot search wire shape.
type slotSearchRequest struct {
	StartDaysOut    int    `json:"startDaysOut"`
	Days            int    `json:"days"`
	DurationMinutes int    `json:"durationMinutes"`
	Line1           string `json:"line1"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postalCode"`
	ProviderID      string `json:"providerId,omitempty"`
}

// SearchSlots runs a slot search. It satisfies availability.Backend.
func (c *Client) SearchSlots(ctx context.Context, req availability.SearchRequest) (availability.RawResult, error) {
	body := slotSearchRequest{
		StartDaysOut:    req.StartDaysOut,
		Days:            req.Days,
		DurationMinutes: req.DurationMinutes,
		Line1:           req.Line1,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		ProviderID:      req.ProviderID,
	}
	var out availability.RawResult
	path := fmt.Sprintf("/v1/practices/%s/slots/search", url.PathEscape(req.PracticeID))
	if err := c.post(ctx, "vetdata.search_slots", path, body, &out); err != nil {
		return availability.RawResult{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, span, path string, out any) error {
	return c.do(ctx, span, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, span, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("vetdata: marshal request: %w", err)
	}
	return c.do(ctx, span, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, spanName, method, path string, body []byte, out any) error {
	ctx, span := c.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("vetdata: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vetdata: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("vetdata request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("vetdata: %s %s returned status %d: %s", method, path, resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vetdata: decode %s response: %w", path, err)
	}
	return nil
}
