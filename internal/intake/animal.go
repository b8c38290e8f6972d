package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SpeciesRef and BreedRef point into the practice catalog by id, keeping the
// display name alongside so the payload is readable without a catalog join.
type SpeciesRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BreedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Animal is one patient in the household. Known animals carry the record
// system's pet id; newly declared animals carry a session-local id from
// NewLocalPetID.
type Animal struct {
	PetID         string     `json:"petId"`
	Name          string     `json:"name"`
	Species       SpeciesRef `json:"species"`
	Breed         BreedRef   `json:"breed"`
	DateOfBirth   string     `json:"dateOfBirth,omitempty"`
	Sex           string     `json:"sex,omitempty"`
	Neutered      bool       `json:"neutered,omitempty"`
	WeightLbs     float64    `json:"weightLbs,omitempty"`
	BehaviorNotes string     `json:"behaviorNotes,omitempty"`

	// Handling flags collected during intake.
	NeedsCalmingMeds bool `json:"needsCalmingMeds,omitempty"`
	HasCalmingMeds   bool `json:"hasCalmingMeds,omitempty"`
	NeedsMuzzle      bool `json:"needsMuzzle,omitempty"`

	// Selected marks the animal as part of this visit. Unselected animals
	// stay in the roster view but contribute no need and no visit duration.
	Selected bool `json:"-"`

	// NewThisRequest is true for animals declared during this submission,
	// i.e. not yet in any record system.
	NewThisRequest bool `json:"-"`
}

// NewLocalPetID generates an identifier for a newly declared animal. It is
// stable for the session and meaningless outside it.
func NewLocalPetID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("new-%d-%s", now.UnixMilli(), suffix)
}
