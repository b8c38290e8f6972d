package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/homevet/intake-platform/internal/vetdata"
	"github.com/homevet/intake-platform/pkg/logging"
)

// Lookup is the live scheduling-backend side of the catalog.
type Lookup interface {
	ListSpecies(ctx context.Context, practiceID string) ([]vetdata.CatalogItem, error)
	ListBreeds(ctx context.Context, practiceID, speciesID string) ([]vetdata.Breed, error)
	ListAppointmentCategories(ctx context.Context, practiceID string, authenticated bool) ([]vetdata.AppointmentCategory, error)
}

// ErrNoSpeciesSelected guards the lookup sequencing: breeds are only
// resolvable once a species has been chosen.
var ErrNoSpeciesSelected = errors.New("catalog: species must be selected before breeds")

// Service answers catalog lookups from the local cache, falling back to the
// live backend on a miss and writing the result through. Failures surface as
// field-local errors; the service never substitutes a guessed value.
type Service struct {
	repo   *Repository
	lookup Lookup
	logger *logging.Logger
}

func NewService(repo *Repository, lookup Lookup, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, lookup: lookup, logger: logger}
}

// Species lists the practice's species catalog.
func (s *Service) Species(ctx context.Context, practiceID string) ([]vetdata.CatalogItem, error) {
	if s.repo != nil {
		cached, err := s.repo.ListSpecies(ctx, practiceID)
		if err != nil {
			s.logger.Warn("species cache read failed, using live lookup", "error", err)
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	live, err := s.lookup.ListSpecies(ctx, practiceID)
	if err != nil {
		return nil, fmt.Errorf("catalog: species lookup: %w", err)
	}
	if s.repo != nil {
		if err := s.repo.ReplaceSpecies(ctx, practiceID, live); err != nil {
			s.logger.Warn("species cache write failed", "error", err)
		}
	}
	return live, nil
}

// Breeds lists the breeds for a chosen species. An empty speciesID is a
// sequencing violation, not a lookup miss.
func (s *Service) Breeds(ctx context.Context, practiceID, speciesID string) ([]vetdata.Breed, error) {
	if speciesID == "" {
		return nil, ErrNoSpeciesSelected
	}

	if s.repo != nil {
		cached, err := s.repo.ListBreeds(ctx, practiceID, speciesID)
		if err != nil {
			s.logger.Warn("breed cache read failed, using live lookup", "error", err)
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	live, err := s.lookup.ListBreeds(ctx, practiceID, speciesID)
	if err != nil {
		return nil, fmt.Errorf("catalog: breed lookup: %w", err)
	}
	if s.repo != nil {
		if err := s.repo.ReplaceBreeds(ctx, practiceID, speciesID, live); err != nil {
			s.logger.Warn("breed cache write failed", "error", err)
		}
	}
	return live, nil
}

// RefreshSpecies re-fetches the species catalog from the backend and swaps
// the cached set, regardless of what is cached.
func (s *Service) RefreshSpecies(ctx context.Context, practiceID string) error {
	live, err := s.lookup.ListSpecies(ctx, practiceID)
	if err != nil {
		return fmt.Errorf("catalog: species refresh: %w", err)
	}
	if s.repo == nil {
		return nil
	}
	if err := s.repo.ReplaceSpecies(ctx, practiceID, live); err != nil {
		return fmt.Errorf("catalog: species refresh write: %w", err)
	}
	return nil
}

// AppointmentCategories lists the categories eligible for display, always
// live: eligibility flags change with practice settings.
func (s *Service) AppointmentCategories(ctx context.Context, practiceID string, authenticated bool) ([]vetdata.AppointmentCategory, error) {
	cats, err := s.lookup.ListAppointmentCategories(ctx, practiceID, authenticated)
	if err != nil {
		return nil, fmt.Errorf("catalog: appointment category lookup: %w", err)
	}
	return cats, nil
}
