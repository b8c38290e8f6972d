// Package handlers exposes the intake flow over HTTP: catalog lookups, the
// zone gate, slot search, and final submission.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/homevet/intake-platform/internal/intake"
)

// sessionHeader carries the client-generated intake session id. The session
// scopes cached zone results and slot offers; it is not an auth credential.
const sessionHeader = "X-Intake-Session"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(sessionHeader))
}

// addressFromQuery reads the structural address fields off a GET request.
func addressFromQuery(r *http.Request) intake.Address {
	q := r.URL.Query()
	return intake.Address{
		Line1:      strings.TrimSpace(q.Get("line1")),
		Line2:      strings.TrimSpace(q.Get("line2")),
		City:       strings.TrimSpace(q.Get("city")),
		State:      strings.TrimSpace(q.Get("state")),
		PostalCode: strings.TrimSpace(q.Get("postalCode")),
	}
}
