package mask

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/goliatone/go-intake/pkg/model"
)

func TestMaskers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"tax id short", TaxID, "12", "12"},
		{"tax id grouped", TaxID, "123", "12-3"},
		{"tax id full", TaxID, "12-3456789", "12-3456789"},
		{"tax id truncates", TaxID, "1234567890123", "12-3456789"},
		{"ssn three", SSN, "123", "123"},
		{"ssn five", SSN, "12345", "123-45"},
		{"ssn full", SSN, "123 45 6789 00", "123-45-6789"},
		{"phone three", Phone, "(512", "512"},
		{"phone six", Phone, "512555", "512-555"},
		{"phone full", Phone, "(512) 555-0100", "512-555-0100"},
		{"phone truncates", Phone, "5125550100999", "512-555-0100"},
		{"postal", PostalCode, "78701-1234", "78701"},
		{"currency", Currency, "1234", "$1,234"},
		{"currency large", Currency, "$2,500,000", "$2,500,000"},
		{"currency zeros", Currency, "0005", "$5"},
		{"currency zero", Currency, "0", "$0"},
		{"currency letters", Currency, "abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskersAcceptEmpty(t *testing.T) {
	for _, m := range model.Masks() {
		if got := Apply(m, ""); got != "" {
			t.Fatalf("Apply(%s, \"\") = %q, want empty", m, got)
		}
	}
	if got := Clamp("", 100); got != "" {
		t.Fatalf("Clamp empty = %q", got)
	}
}

func TestSSN_IdempotentAndReversible(t *testing.T) {
	const all = "123456789"
	inputs := []string{""}
	for i := 1; i <= len(all); i++ {
		inputs = append(inputs, all[:i])
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(10)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteByte(byte('0' + rng.Intn(10)))
		}
		inputs = append(inputs, b.String())
	}

	for _, d := range inputs {
		once := SSN(d)
		if twice := SSN(once); twice != once {
			t.Fatalf("SSN not idempotent for %q: %q then %q", d, once, twice)
		}
		if got := StripNonDigits(once); got != d {
			t.Fatalf("StripNonDigits(SSN(%q)) = %q", d, got)
		}
	}
}

func TestMasks_Idempotent(t *testing.T) {
	inputs := []string{"", "0", "7", "12", "123", "1234", "0012", "12345678901234567890", "$1,234", "abc", " 5 5 5 "}
	for _, m := range model.Masks() {
		for _, in := range inputs {
			once := Apply(m, in)
			if twice := Apply(m, once); twice != once {
				t.Fatalf("%s mask not idempotent for %q: %q then %q", m, in, once, twice)
			}
		}
	}
}

func TestClamp(t *testing.T) {
	tests := map[string]string{
		"50":                      "50",
		"100":                     "100",
		"101":                     "100",
		"250%":                    "100",
		"007":                     "7",
		"000":                     "0",
		"99999999999999999999999": "100",
	}
	for in, want := range tests {
		if got := Clamp(in, 100); got != want {
			t.Fatalf("Clamp(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		mask    model.Mask
		display string
		want    string
	}{
		{model.MaskTaxID, "12-3456789", "123456789"},
		{model.MaskSSN, "123-45-6789", "123456789"},
		{model.MaskPhone, "512-555-0100", "5125550100"},
		{model.MaskCurrency, "$25,000", "25000"},
		{model.MaskCurrency, "", ""},
		{model.MaskPostalCode, "78701", "78701"},
		{model.MaskNone, "Acme LLC", "Acme LLC"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.mask, tt.display); got != tt.want {
			t.Fatalf("Canonical(%s, %q) = %q, want %q", tt.mask, tt.display, got, tt.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"Acme LLC":         "Acme LLC",
		"Smith & Sons":     "Smith & Sons",
		"<b>Acme</b> LLC":  "Acme LLC",
		"trailing space ":  "trailing space ",
		"O'Brien Plumbing": "O'Brien Plumbing",
	}
	for in, want := range tests {
		if got := SanitizeText(in); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
