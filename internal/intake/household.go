package intake

// HouseholdShape identifies which of the four mutually exclusive input
// shapes produced the household. The shape drives which payload fields the
// normalizer is allowed to emit.
type HouseholdShape string

const (
	// ShapeRoster: authenticated returning client selecting from their
	// animals on file.
	ShapeRoster HouseholdShape = "roster"
	// ShapeRosterWithAdditions: roster selection plus animals declared
	// during this request.
	ShapeRosterWithAdditions HouseholdShape = "roster_with_additions"
	// ShapeFreeText: returning but unauthenticated client describing their
	// animals in free text, with no structured selection.
	ShapeFreeText HouseholdShape = "free_text"
	// ShapeNewPets: brand-new client declaring all animals during this
	// request.
	ShapeNewPets HouseholdShape = "new_pets"
)

// Household presents one uniform animal/need view regardless of input shape.
// Implementations are the four variants below; callers never branch on
// optional-field combinations, only on Shape when serializing.
type Household interface {
	Shape() HouseholdShape
	// Animals returns the full roster in input order, including animals not
	// selected for this visit. Free-text households return nil.
	Animals() []Animal
	// NeedFor returns the visit need for a selected animal. Animals that are
	// not selected for this visit have no need.
	NeedFor(petID string) (Need, bool)
}

// SelectedAnimals filters a household's roster to the animals taking part in
// this visit.
func SelectedAnimals(h Household) []Animal {
	var out []Animal
	for _, a := range h.Animals() {
		if a.Selected {
			out = append(out, a)
		}
	}
	return out
}

// SelectedNeeds collects the needs of every selected animal, the input the
// end-of-life override runs over.
func SelectedNeeds(h Household) []Need {
	var out []Need
	for _, a := range SelectedAnimals(h) {
		if n, ok := h.NeedFor(a.PetID); ok {
			out = append(out, n)
		}
	}
	return out
}

// RosterHousehold is the structured shape for authenticated returning
// clients: animals on file, a subset selected, each selected animal mapped
// to a need.
type RosterHousehold struct {
	Pets  []Animal
	Needs map[string]Need
}

func (h *RosterHousehold) Shape() HouseholdShape { return ShapeRoster }
func (h *RosterHousehold) Animals() []Animal     { return h.Pets }

func (h *RosterHousehold) NeedFor(petID string) (Need, bool) {
	if !h.selected(petID) {
		return Need{}, false
	}
	n, ok := h.Needs[petID]
	return n, ok
}

func (h *RosterHousehold) selected(petID string) bool {
	for _, a := range h.Pets {
		if a.PetID == petID {
			return a.Selected
		}
	}
	return false
}

// RosterWithAdditionsHousehold extends a roster selection with animals
// declared during this request. Added animals are always selected; they were
// declared because they need to be seen.
type RosterWithAdditionsHousehold struct {
	Pets  []Animal
	Added []Animal
	Needs map[string]Need
}

func (h *RosterWithAdditionsHousehold) Shape() HouseholdShape { return ShapeRosterWithAdditions }

func (h *RosterWithAdditionsHousehold) Animals() []Animal {
	out := make([]Animal, 0, len(h.Pets)+len(h.Added))
	out = append(out, h.Pets...)
	for _, a := range h.Added {
		a.Selected = true
		a.NewThisRequest = true
		out = append(out, a)
	}
	return out
}

func (h *RosterWithAdditionsHousehold) NeedFor(petID string) (Need, bool) {
	for _, a := range h.Animals() {
		if a.PetID == petID {
			if !a.Selected {
				return Need{}, false
			}
			n, ok := h.Needs[petID]
			return n, ok
		}
	}
	return Need{}, false
}

// FreeTextHousehold carries a single unstructured description. No per-animal
// structure exists, so there is no roster and no per-animal need.
type FreeTextHousehold struct {
	Description string
}

func (h *FreeTextHousehold) Shape() HouseholdShape       { return ShapeFreeText }
func (h *FreeTextHousehold) Animals() []Animal           { return nil }
func (h *FreeTextHousehold) NeedFor(string) (Need, bool) { return Need{}, false }

// NewPetsHousehold is the brand-new-client shape: every animal was declared
// in this request and every animal is part of the visit.
type NewPetsHousehold struct {
	Pets  []Animal
	Needs map[string]Need
}

func (h *NewPetsHousehold) Shape() HouseholdShape { return ShapeNewPets }

func (h *NewPetsHousehold) Animals() []Animal {
	out := make([]Animal, 0, len(h.Pets))
	for _, a := range h.Pets {
		a.Selected = true
		a.NewThisRequest = true
		out = append(out, a)
	}
	return out
}

func (h *NewPetsHousehold) NeedFor(petID string) (Need, bool) {
	for _, a := range h.Pets {
		if a.PetID == petID {
			n, ok := h.Needs[petID]
			return n, ok
		}
	}
	return Need{}, false
}
