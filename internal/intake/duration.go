package intake

// Visit duration is derived, never asked. The first selected animal gets the
// base duration and each additional one a fixed increment. The estimate
// feeds the slot search request; it is not persisted on the final record.
const (
	BaseVisitMinutes      = 40
	PerAnimalExtraMinutes = 20
)

// EstimateVisitMinutes derives the visit length for a household. Zero
// selected animals (the free-text shape has no structured selection) falls
// back to the base duration.
func EstimateVisitMinutes(h Household) int {
	n := len(SelectedAnimals(h))
	if n <= 1 {
		return BaseVisitMinutes
	}
	return BaseVisitMinutes + (n-1)*PerAnimalExtraMinutes
}
