package draft

import (
	"testing"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/google/go-cmp/cmp"
)

func boolPtr(v bool) *bool { return &v }

func TestHydrate_LegacyCompositeAddress(t *testing.T) {
	state := Hydrate(Record{
		BusinessAddress: "100 Congress Ave",
		BusinessCSZ:     "Austin, TX 78701",
	})
	want := model.FormState{
		"businessStreet": "100 Congress Ave",
		"businessCity":   "Austin",
		"businessState":  "TX",
		"businessZip":    "78701",
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("hydrate mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrate_StructuredWinsFieldByField(t *testing.T) {
	state := Hydrate(Record{
		OwnerCity: "Round Rock",
		OwnerCSZ:  "Austin, tx 78701",
	})
	if got := state.Get("ownerCity"); got != "Round Rock" {
		t.Fatalf("ownerCity = %q, want structured value", got)
	}
	if got := state.Get("ownerState"); got != "TX" {
		t.Fatalf("ownerState = %q, want legacy fallback upper-cased", got)
	}
	if got := state.Get("ownerZip"); got != "78701" {
		t.Fatalf("ownerZip = %q", got)
	}
}

func TestHydrate_MasksAndFallbacks(t *testing.T) {
	rec := Record{
		TaxID:               "123456789",
		OwnerSSN:            "123456789",
		OwnerPhone:          "5125550100",
		RequestedAmount:     "250000",
		OwnershipPercentage: "150",
		OwnerFirstName:      "Ada",
		OwnerLastName:       "Lovelace",
		AcceptsCreditCards:  boolPtr(true),
		HasExistingBalance:  boolPtr(false),
		Extras:              map[string]string{"timeInBusiness": "Yes", "taxId": "ignored"},
	}
	got := Hydrate(rec)
	want := model.FormState{
		"taxId":               "12-3456789",
		"ownerSsn":            "123-45-6789",
		"ownerPhone":          "512-555-0100",
		"requestedAmount":     "$250,000",
		"ownershipPercentage": "100",
		"ownerName":           "Ada Lovelace",
		"acceptsCreditCards":  "Yes",
		"hasExistingBalance":  "No",
		"timeInBusiness":      "Yes",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hydrate mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(got, Hydrate(rec)); diff != "" {
		t.Fatalf("hydrate is not deterministic (-first +second):\n%s", diff)
	}
}

func TestExport_StripsMasksAndComposes(t *testing.T) {
	state := model.FormState{
		"legalBusinessName":   "Acme LLC",
		"taxId":               "12-3456789",
		"ownerSsn":            "123-45-6789",
		"ownerPhone":          "512-555-0100",
		"requestedAmount":     "$250,000",
		"ownershipPercentage": "60",
		"acceptsCreditCards":  "Yes",
		"businessStreet":      "100 Congress Ave",
		"businessCity":        "Austin",
		"businessState":       "tx",
		"businessZip":         "78701",
		"ownerCity":           "Austin",
		"revenueBracket":      "$50k-$100k",
		"blank":               "  ",
	}
	got := Export(state, false)
	want := Record{
		LegalBusinessName:   "Acme LLC",
		TaxID:               "123456789",
		OwnerSSN:            "123456789",
		OwnerPhone:          "5125550100",
		RequestedAmount:     "250000",
		OwnershipPercentage: "60",
		AcceptsCreditCards:  boolPtr(true),
		BusinessStreet:      "100 Congress Ave",
		BusinessCity:        "Austin",
		BusinessState:       "TX",
		BusinessZip:         "78701",
		BusinessAddress:     "100 Congress Ave",
		BusinessCSZ:         "Austin, TX 78701",
		OwnerCity:           "Austin",
		Extras:              map[string]string{"revenueBracket": "$50k-$100k"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
	if got.OwnerCSZ != "" {
		t.Fatalf("owner csz must stay absent without a state, got %q", got.OwnerCSZ)
	}
}

func TestExport_Final(t *testing.T) {
	rec := Export(model.FormState{}, true)
	if !rec.IsComplete || rec.Signature != SignatureSentinel {
		t.Fatalf("final export must be complete and signed, got %+v", rec)
	}
	if rec := Export(model.FormState{}, false); rec.IsComplete || rec.Signature != "" {
		t.Fatalf("partial export must not be signed, got %+v", rec)
	}
}

func TestHydrateExport_RoundTrip(t *testing.T) {
	state := model.FormState{
		"legalBusinessName": "Acme LLC",
		"taxId":             "12-3456789",
		"requestedAmount":   "$50,000",
		"ownerStreet":       "1 Main St",
		"ownerCity":         "Austin",
		"ownerState":        "TX",
		"ownerZip":          "78701",
		"timeInBusiness":    "Yes",
	}
	if diff := cmp.Diff(state, Hydrate(Export(state, false))); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
