package model

import (
	"strings"
	"testing"

	"github.com/goliatone/go-intake/pkg/address"
	"github.com/goliatone/go-intake/pkg/rule"
	"github.com/google/go-cmp/cmp"
)

func validSteps() []StepDescriptor {
	limit := 100
	return []StepDescriptor{
		{Key: "legalBusinessName", Kind: KindText, Required: true},
		{Key: "hasExistingBalance", Kind: KindSingleSelect, Required: true, Options: []string{"Yes", "No"},
			FollowUp: &FollowUp{Key: "existingBalance", Kind: KindCurrency, Mask: MaskCurrency, When: rule.Equals("Yes")}},
		{Key: "existingLender", Kind: KindText, Required: true,
			ShowWhen: &Condition{Key: "hasExistingBalance", When: rule.Equals("Yes")}},
		{Key: "business", Kind: KindAddressGroup, GroupPrefix: "business", Required: true},
		{Key: "ownershipPercentage", Kind: KindNumber, Required: true, Max: &limit},
		{Key: "consent", Kind: KindTerminalConsent, Required: true},
	}
}

func TestNewRegistry_Valid(t *testing.T) {
	reg, err := NewRegistry("full", validSteps(), WithClearIdentityOnSubmit(true))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if reg.Len() != 6 || reg.TerminalIndex() != 5 {
		t.Fatalf("unexpected length %d / terminal %d", reg.Len(), reg.TerminalIndex())
	}
	if !reg.ClearIdentityOnSubmit() {
		t.Fatalf("expected clear-on-submit option to apply")
	}

	zip, err := reg.Field("businessZip")
	if err != nil {
		t.Fatalf("Field(businessZip): %v", err)
	}
	want := Field{Key: "businessZip", Step: 3, Kind: KindAddressGroup, Mask: MaskPostalCode, Part: AddressZip}
	if diff := cmp.Diff(want, zip); diff != "" {
		t.Fatalf("zip field mismatch (-want +got):\n%s", diff)
	}

	followUp, err := reg.Field("existingBalance")
	if err != nil {
		t.Fatalf("Field(existingBalance): %v", err)
	}
	if !followUp.FollowUp || followUp.Step != 1 || followUp.Mask != MaskCurrency {
		t.Fatalf("unexpected follow-up field %+v", followUp)
	}

	if _, err := reg.Field("consent"); err == nil {
		t.Fatalf("consent step must not own a form slot")
	}

	keys := make([]string, 0)
	for _, f := range reg.Fields() {
		keys = append(keys, f.Key)
	}
	wantKeys := []string{
		"legalBusinessName", "hasExistingBalance", "existingBalance", "existingLender",
		"businessStreet", "businessUnit", "businessCity", "businessState", "businessZip",
		"ownershipPercentage",
	}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistry_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]StepDescriptor) []StepDescriptor
		want   string
	}{
		{
			name: "terminal not last",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				s[0], s[5] = s[5], s[0]
				return s
			},
			want: "must be the last step",
		},
		{
			name: "no terminal",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				return s[:5]
			},
			want: "exactly one terminal consent",
		},
		{
			name: "duplicate key via address sub-key",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				s[0].Key = "businessCity"
				return s
			},
			want: "duplicate field key",
		},
		{
			name: "select without options",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				s[1].Options = nil
				return s
			},
			want: "requires options",
		},
		{
			name: "condition references later key",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				s[2].ShowWhen.Key = "ownershipPercentage"
				return s
			},
			want: "unknown or later key",
		},
		{
			name: "unknown kind",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				s[0].Kind = "slider"
				return s
			},
			want: "unknown kind",
		},
		{
			name: "follow-up without rule",
			mutate: func(s []StepDescriptor) []StepDescriptor {
				s[1].FollowUp.When = nil
				return s
			},
			want: "trigger rule",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry("broken", tt.mutate(validSteps()))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseStepKind_CoversEveryKind(t *testing.T) {
	for _, kind := range Kinds() {
		got, err := ParseStepKind(" " + strings.ToUpper(string(kind)) + " ")
		if err != nil || got != kind {
			t.Fatalf("ParseStepKind(%q) = %q, %v", kind, got, err)
		}
	}
	if _, err := ParseStepKind("slider"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestParseMask(t *testing.T) {
	if m, err := ParseMask(""); err != nil || m != MaskNone {
		t.Fatalf("empty mask = %q, %v", m, err)
	}
	if m, err := ParseMask("SSN"); err != nil || m != MaskSSN {
		t.Fatalf("ssn mask = %q, %v", m, err)
	}
	if _, err := ParseMask("iban"); err == nil {
		t.Fatalf("expected unknown mask error")
	}
}

func TestFormState_Address(t *testing.T) {
	state := FormState{}
	state.SetAddress("owner", address.Parts{Street: "1 Main St", City: "Austin", State: "TX", Zip: "78701"})
	if state.Present("ownerUnit") {
		t.Fatalf("empty unit should not be stored")
	}
	got := state.Address("owner")
	want := address.Parts{Street: "1 Main St", City: "Austin", State: "TX", Zip: "78701"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("address mismatch (-want +got):\n%s", diff)
	}

	clone := state.Clone()
	clone.Set("ownerCity", "Dallas")
	if state.Get("ownerCity") != "Austin" {
		t.Fatalf("clone must not alias original")
	}
}

func TestCondition(t *testing.T) {
	var nilCond *Condition
	if !nilCond.Satisfied(nil) {
		t.Fatalf("nil condition must be satisfied")
	}
	cond := &Condition{Key: "hasExistingBalance", When: rule.Equals("yes")}
	if cond.Satisfied(FormState{"hasExistingBalance": "No"}) {
		t.Fatalf("unexpected match")
	}
	if !cond.Satisfied(FormState{"hasExistingBalance": "Yes"}) {
		t.Fatalf("expected match")
	}
}
