package draft

// Identity is the opaque identifier the backend assigns to a draft.
type Identity string

// String implements fmt.Stringer.
func (id Identity) String() string { return string(id) }

// SignatureSentinel stands in for an electronic signature once the applicant
// has given consent on the terminal step.
const SignatureSentinel = "ELECTRONIC-CONSENT-ON-FILE"

// Record is the wire shape of a draft application. Address fields exist in
// both the structured form and the legacy composed form; older drafts may
// carry only the legacy fields.
type Record struct {
	LegalBusinessName    string `json:"legalBusinessName,omitempty"`
	DBA                  string `json:"dba,omitempty"`
	CompanyEmail         string `json:"companyEmail,omitempty"`
	CompanyWebsite       string `json:"companyWebsite,omitempty"`
	BusinessStartDate    string `json:"businessStartDate,omitempty"`
	TaxID                string `json:"taxId,omitempty"`
	Industry             string `json:"industry,omitempty"`
	StateOfIncorporation string `json:"stateOfIncorporation,omitempty"`
	AcceptsCreditCards   *bool  `json:"acceptsCreditCards,omitempty"`

	BusinessStreet string `json:"businessStreet,omitempty"`
	BusinessUnit   string `json:"businessUnit,omitempty"`
	BusinessCity   string `json:"businessCity,omitempty"`
	BusinessState  string `json:"businessState,omitempty"`
	BusinessZip    string `json:"businessZip,omitempty"`
	// BusinessAddress is the legacy street line.
	BusinessAddress string `json:"businessAddress,omitempty"`
	// BusinessCSZ is the legacy "City, ST 12345" string.
	BusinessCSZ string `json:"businessCsz,omitempty"`

	RequestedAmount    string `json:"requestedAmount,omitempty"`
	HasExistingBalance *bool  `json:"hasExistingBalance,omitempty"`
	ExistingBalance    string `json:"existingBalance,omitempty"`
	ExistingLender     string `json:"existingLender,omitempty"`

	OwnerName      string `json:"ownerName,omitempty"`
	OwnerFirstName string `json:"ownerFirstName,omitempty"`
	OwnerLastName  string `json:"ownerLastName,omitempty"`
	OwnerEmail     string `json:"ownerEmail,omitempty"`
	OwnerPhone     string `json:"ownerPhone,omitempty"`
	OwnerSSN       string `json:"ownerSsn,omitempty"`
	CreditScore    string `json:"creditScore,omitempty"`

	OwnerStreet  string `json:"ownerStreet,omitempty"`
	OwnerUnit    string `json:"ownerUnit,omitempty"`
	OwnerCity    string `json:"ownerCity,omitempty"`
	OwnerState   string `json:"ownerState,omitempty"`
	OwnerZip     string `json:"ownerZip,omitempty"`
	OwnerAddress string `json:"ownerAddress,omitempty"`
	OwnerCSZ     string `json:"ownerCsz,omitempty"`

	DateOfBirth         string `json:"dateOfBirth,omitempty"`
	OwnershipPercentage string `json:"ownershipPercentage,omitempty"`

	// Extras carries answers without a dedicated column, such as quiz
	// responses and follow-up refinements.
	Extras map[string]string `json:"extras,omitempty"`

	IsComplete bool   `json:"isComplete"`
	Signature  string `json:"signature,omitempty"`
}

// Envelope pairs a record with its identity on the HTTP API.
type Envelope struct {
	ID     Identity `json:"id"`
	Record Record   `json:"record"`
}
