// Package address maps structured address parts to and from the legacy
// composed "City, ST 12345" string (CSZ) stored by the draft backend.
//
// Decompose is a best-effort compatibility shim and is not round-trip safe:
// a city containing a comma, or a malformed state/zip remainder, produces
// shifted parts. That behaviour is relied upon by existing consumers of the
// stored format and is kept as is.
package address

import (
	"strings"
	"unicode"
)

// Parts is a structured postal address.
type Parts struct {
	Street string `json:"street,omitempty"`
	Unit   string `json:"unit,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// IsZero reports whether every part is empty.
func (p Parts) IsZero() bool {
	return p == Parts{}
}

// Compose renders "{city}, {state} {zip}". The boolean is false, and the
// string empty, unless both city and state are present.
func Compose(p Parts) (string, bool) {
	city := strings.TrimSpace(p.City)
	state := strings.TrimSpace(p.State)
	if city == "" || state == "" {
		return "", false
	}
	out := city + ", " + state + " " + strings.TrimSpace(p.Zip)
	return strings.TrimRightFunc(out, unicode.IsSpace), true
}

// Decompose splits a composed CSZ string on the first comma for the city and
// the remainder on the first whitespace run for state and zip. Empty input or
// input without a comma yields empty parts.
func Decompose(s string) Parts {
	city, rest, found := strings.Cut(s, ",")
	if !found {
		return Parts{}
	}
	city = strings.TrimSpace(city)
	rest = strings.TrimSpace(rest)

	state, zip := rest, ""
	if idx := strings.IndexFunc(rest, unicode.IsSpace); idx >= 0 {
		state = rest[:idx]
		zip = strings.TrimSpace(rest[idx:])
	}
	return Parts{City: city, State: state, Zip: zip}
}
