package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/homevet/intake-platform/internal/http/handlers"
	"github.com/homevet/intake-platform/internal/vetdata"
	"github.com/homevet/intake-platform/pkg/logging"
)

type staticCatalog struct{}

func (staticCatalog) Species(context.Context, string) ([]vetdata.CatalogItem, error) {
	return []vetdata.CatalogItem{{ID: "sp-1", Name: "Dog"}}, nil
}

func (staticCatalog) Breeds(context.Context, string, string) ([]vetdata.Breed, error) {
	return []vetdata.Breed{{ID: "br-1", Name: "Whippet"}}, nil
}

func (staticCatalog) AppointmentCategories(context.Context, string, bool) ([]vetdata.AppointmentCategory, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &Config{
		Logger:  logging.Default(),
		Catalog: handlers.NewCatalogHandler(staticCatalog{}, "prac-1", nil),
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterCatalogRoutes(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/intake/catalog/species", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string][]vetdata.CatalogItem
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode species response: %v", err)
	}
	if len(resp["species"]) != 1 {
		t.Errorf("expected 1 species, got %d", len(resp["species"]))
	}
}

func TestRouterUnwiredRoutesReturn404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/intake/zone-check", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
