// Package requests persists submitted appointment requests. A request is
// written exactly once at submission time and never updated.
package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/homevet/intake-platform/internal/intake"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrNotFound is returned when no request exists for the given id.
var ErrNotFound = errors.New("requests: not found")

// Record is a stored submission.
type Record struct {
	ID          uuid.UUID
	EntryFlow   string
	Manual      bool
	Payload     intake.AppointmentRequest
	SubmittedAt time.Time
}

// Repository provides persistence for appointment requests.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	if db == nil {
		panic("requests: db required")
	}
	return &Repository{db: db}
}

// Insert stores a submitted request and returns its id. The payload column
// carries the canonical wire form, so every consumer reads exactly what was
// sent.
func (r *Repository) Insert(ctx context.Context, req *intake.AppointmentRequest) (uuid.UUID, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("requests: marshal payload: %w", err)
	}

	id := uuid.New()
	_, err = r.db.Exec(ctx, `
		INSERT INTO appointment_requests (id, entry_flow, manual_scheduling, payload, submitted_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, req.EntryFlow, req.ManualSchedulingRequired, payload, req.SubmittedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("requests: insert: %w", err)
	}
	return id, nil
}

// Get loads a stored submission by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, entry_flow, manual_scheduling, payload, submitted_at
		FROM appointment_requests WHERE id = $1`, id).
		Scan(&rec.ID, &rec.EntryFlow, &rec.Manual, &payload, &rec.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("requests: load: %w", err)
	}
	if err := json.Unmarshal(payload, &rec.Payload); err != nil {
		return nil, fmt.Errorf("requests: unmarshal payload: %w", err)
	}
	return &rec, nil
}
