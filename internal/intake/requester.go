package intake

import "strings"

// AccountStatus distinguishes returning clients from brand-new ones.
type AccountStatus string

const (
	AccountExisting AccountStatus = "existing"
	AccountNew      AccountStatus = "new"
)

// Address is a structural postal address. The zone gate only fires once all
// structural fields are present.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// Complete reports whether every structural field is filled in. Line2 is not
// structural.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}

// Requester identifies the person submitting the request.
type Requester struct {
	AccountStatus AccountStatus
	Authenticated bool
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	TextConsent   bool

	PhysicalAddress Address
	// MailingAddress is set only when it differs from PhysicalAddress.
	MailingAddress *Address
	// NewAddressForVisit is true when an existing client supplies an address
	// other than the one on file; that address goes through the zone gate
	// like a new client's would.
	NewAddressForVisit bool
}

// NeedsZoneCheck applies the zone gate policy: new clients are always
// checked, existing clients only when they bring a new address. The address
// on file was validated at onboarding.
func (r Requester) NeedsZoneCheck() bool {
	if r.AccountStatus == AccountNew {
		return true
	}
	return r.NewAddressForVisit
}
