package vetdata

// CatalogItem is a species or appointment-category entry from the practice
// catalog.
type CatalogItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Breed is a catalog breed scoped to a species.
type Breed struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
}

// AppointmentCategory is an appointment type eligible for display on the
// intake form.
type AppointmentCategory struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	NewPatientEligible bool   `json:"newPatientEligible"`
}

// Provider is a veterinarian or technician who may take the appointment.
// HasZoneData distinguishes "not accepting" from "acceptance unknown":
// providers without zone/acceptance data are included by default.
type Provider struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	AcceptingNewPatients bool   `json:"acceptingNewPatients"`
	HasZoneData          bool   `json:"hasZoneData"`
}
