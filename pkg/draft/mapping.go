package draft

import (
	"strings"

	"github.com/goliatone/go-intake/pkg/address"
	"github.com/goliatone/go-intake/pkg/mask"
	"github.com/goliatone/go-intake/pkg/model"
)

const (
	// BusinessPrefix is the address group prefix for the business address.
	BusinessPrefix = "business"
	// OwnerPrefix is the address group prefix for the owner's home address.
	OwnerPrefix = "owner"

	ownershipCap = 100
)

const (
	answerYes = "Yes"
	answerNo  = "No"
)

type scalarBinding struct {
	key   string
	field func(*Record) *string
	mask  model.Mask
	clamp int
}

func (b scalarBinding) display(value string) string {
	if b.clamp > 0 {
		return mask.Clamp(value, b.clamp)
	}
	return mask.Apply(b.mask, value)
}

func (b scalarBinding) canonical(value string) string {
	value = strings.TrimSpace(value)
	if b.clamp > 0 {
		return mask.StripNonDigits(value)
	}
	return mask.Canonical(b.mask, value)
}

var scalarBindings = []scalarBinding{
	{key: "legalBusinessName", field: func(r *Record) *string { return &r.LegalBusinessName }},
	{key: "dba", field: func(r *Record) *string { return &r.DBA }},
	{key: "companyEmail", field: func(r *Record) *string { return &r.CompanyEmail }},
	{key: "companyWebsite", field: func(r *Record) *string { return &r.CompanyWebsite }},
	{key: "businessStartDate", field: func(r *Record) *string { return &r.BusinessStartDate }},
	{key: "taxId", field: func(r *Record) *string { return &r.TaxID }, mask: model.MaskTaxID},
	{key: "industry", field: func(r *Record) *string { return &r.Industry }},
	{key: "stateOfIncorporation", field: func(r *Record) *string { return &r.StateOfIncorporation }},
	{key: "requestedAmount", field: func(r *Record) *string { return &r.RequestedAmount }, mask: model.MaskCurrency},
	{key: "existingBalance", field: func(r *Record) *string { return &r.ExistingBalance }, mask: model.MaskCurrency},
	{key: "existingLender", field: func(r *Record) *string { return &r.ExistingLender }},
	{key: "ownerName", field: func(r *Record) *string { return &r.OwnerName }},
	{key: "ownerEmail", field: func(r *Record) *string { return &r.OwnerEmail }},
	{key: "ownerPhone", field: func(r *Record) *string { return &r.OwnerPhone }, mask: model.MaskPhone},
	{key: "ownerSsn", field: func(r *Record) *string { return &r.OwnerSSN }, mask: model.MaskSSN},
	{key: "creditScore", field: func(r *Record) *string { return &r.CreditScore }},
	{key: "dateOfBirth", field: func(r *Record) *string { return &r.DateOfBirth }},
	{key: "ownershipPercentage", field: func(r *Record) *string { return &r.OwnershipPercentage }, clamp: ownershipCap},
}

type boolBinding struct {
	key   string
	field func(*Record) **bool
}

var boolBindings = []boolBinding{
	{key: "acceptsCreditCards", field: func(r *Record) **bool { return &r.AcceptsCreditCards }},
	{key: "hasExistingBalance", field: func(r *Record) **bool { return &r.HasExistingBalance }},
}

type addressBinding struct {
	prefix string
	parts  func(*Record) (structured *address.Parts, street *string, csz *string)
}

var addressBindings = []addressBinding{
	{prefix: BusinessPrefix, parts: func(r *Record) (*address.Parts, *string, *string) {
		return &address.Parts{
			Street: r.BusinessStreet, Unit: r.BusinessUnit, City: r.BusinessCity,
			State: r.BusinessState, Zip: r.BusinessZip,
		}, &r.BusinessAddress, &r.BusinessCSZ
	}},
	{prefix: OwnerPrefix, parts: func(r *Record) (*address.Parts, *string, *string) {
		return &address.Parts{
			Street: r.OwnerStreet, Unit: r.OwnerUnit, City: r.OwnerCity,
			State: r.OwnerState, Zip: r.OwnerZip,
		}, &r.OwnerAddress, &r.OwnerCSZ
	}},
}

func setStructured(r *Record, prefix string, p address.Parts) {
	switch prefix {
	case BusinessPrefix:
		r.BusinessStreet, r.BusinessUnit, r.BusinessCity, r.BusinessState, r.BusinessZip = p.Street, p.Unit, p.City, p.State, p.Zip
	case OwnerPrefix:
		r.OwnerStreet, r.OwnerUnit, r.OwnerCity, r.OwnerState, r.OwnerZip = p.Street, p.Unit, p.City, p.State, p.Zip
	}
}

var boundKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, b := range scalarBindings {
		keys[b.key] = struct{}{}
	}
	for _, b := range boolBindings {
		keys[b.key] = struct{}{}
	}
	for _, b := range addressBindings {
		for _, part := range model.AddressParts() {
			keys[model.AddressKey(b.prefix, part)] = struct{}{}
		}
	}
	return keys
}()

// Hydrate maps a stored record onto form state in display form. Structured
// fields win over legacy ones field by field; legacy composed addresses are
// decomposed to fill whatever the structured fields leave empty. Hydrate is a
// pure function of rec.
func Hydrate(rec Record) model.FormState {
	state := model.FormState{}

	for _, b := range scalarBindings {
		value := strings.TrimSpace(*b.field(&rec))
		if value == "" {
			continue
		}
		state.Set(b.key, b.display(value))
	}
	if !state.Present("ownerName") {
		full := strings.TrimSpace(strings.TrimSpace(rec.OwnerFirstName) + " " + strings.TrimSpace(rec.OwnerLastName))
		if full != "" {
			state.Set("ownerName", full)
		}
	}

	for _, b := range boolBindings {
		if v := *b.field(&rec); v != nil {
			state.Set(b.key, yesNo(*v))
		}
	}

	for _, b := range addressBindings {
		structured, street, csz := b.parts(&rec)
		legacy := address.Decompose(*csz)
		parts := address.Parts{
			Street: firstNonEmpty(structured.Street, *street),
			Unit:   strings.TrimSpace(structured.Unit),
			City:   firstNonEmpty(structured.City, legacy.City),
			State:  strings.ToUpper(firstNonEmpty(structured.State, legacy.State)),
			Zip:    mask.PostalCode(firstNonEmpty(structured.Zip, legacy.Zip)),
		}
		state.SetAddress(b.prefix, parts)
	}

	for key, value := range rec.Extras {
		if _, bound := boundKeys[key]; bound {
			continue
		}
		if !state.Present(key) && value != "" {
			state.Set(key, value)
		}
	}
	return state
}

// Export converts form state to the outbound payload, stripping masks and
// composing legacy address strings. A final export marks the record complete
// and attaches the signature sentinel.
func Export(state model.FormState, final bool) Record {
	var rec Record

	for _, b := range scalarBindings {
		*b.field(&rec) = b.canonical(state.Get(b.key))
	}
	for _, b := range boolBindings {
		*b.field(&rec) = parseYesNo(state.Get(b.key))
	}
	for _, b := range addressBindings {
		parts := state.Address(b.prefix)
		parts = address.Parts{
			Street: strings.TrimSpace(parts.Street),
			Unit:   strings.TrimSpace(parts.Unit),
			City:   strings.TrimSpace(parts.City),
			State:  strings.ToUpper(strings.TrimSpace(parts.State)),
			Zip:    mask.StripNonDigits(parts.Zip),
		}
		setStructured(&rec, b.prefix, parts)
		_, street, csz := b.parts(&rec)
		*street = parts.Street
		if composed, ok := address.Compose(parts); ok {
			*csz = composed
		}
	}

	extras := make(map[string]string)
	for key, value := range state {
		if _, bound := boundKeys[key]; bound {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		extras[key] = strings.TrimSpace(value)
	}
	if len(extras) > 0 {
		rec.Extras = extras
	}

	if final {
		rec.IsComplete = true
		rec.Signature = SignatureSentinel
	}
	return rec
}

func yesNo(v bool) string {
	if v {
		return answerYes
	}
	return answerNo
}

func parseYesNo(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true":
		v := true
		return &v
	case "no", "false":
		v := false
		return &v
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
