package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedValidate(t *testing.T) {
	tests := []struct {
		name    string
		need    Need
		wantErr bool
	}{
		{"wellness", Need{Category: NeedWellness}, false},
		{"new illness with details", Need{Category: NeedNewIllness, Details: "limping since Tuesday"}, false},
		{"follow up", Need{Category: NeedFollowUp}, false},
		{"technician task", Need{Category: NeedTechnician, Details: "nail trim"}, false},
		{
			"end of life with questionnaire",
			Need{Category: NeedEndOfLife, EndOfLife: &EndOfLifeDetail{
				Reason:              "terminal diagnosis",
				RecentCare:          "seen by oncology last month",
				OpenToAlternatives:  false,
				AftercarePreference: "cremation",
			}},
			false,
		},
		{"end of life missing questionnaire", Need{Category: NeedEndOfLife}, true},
		{"wellness carrying end-of-life answers", Need{Category: NeedWellness, EndOfLife: &EndOfLifeDetail{}}, true},
		{"unknown category", Need{Category: "grooming"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.need.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForceManualScheduling(t *testing.T) {
	assert.False(t, ForceManualScheduling(nil))
	assert.False(t, ForceManualScheduling([]Need{
		{Category: NeedWellness},
		{Category: NeedFollowUp},
	}))
	assert.True(t, ForceManualScheduling([]Need{
		{Category: NeedWellness},
		{Category: NeedEndOfLife, EndOfLife: &EndOfLifeDetail{Reason: "hospice"}},
		{Category: NeedTechnician},
	}))
}
