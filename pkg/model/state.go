package model

import (
	"maps"
	"strings"

	"github.com/goliatone/go-intake/pkg/address"
)

// FormState holds answers in display form keyed by descriptor key or address
// sub-key. It is never serialised directly; the draft package exports it.
type FormState map[string]string

// Get returns the stored value for key.
func (s FormState) Get(key string) string {
	if s == nil {
		return ""
	}
	return s[key]
}

// Set stores value under key.
func (s FormState) Set(key, value string) {
	s[key] = value
}

// Delete removes key.
func (s FormState) Delete(key string) {
	delete(s, key)
}

// Present reports whether key holds a non-whitespace value.
func (s FormState) Present(key string) bool {
	return strings.TrimSpace(s.Get(key)) != ""
}

// Clone returns an independent copy.
func (s FormState) Clone() FormState {
	out := make(FormState, len(s))
	maps.Copy(out, s)
	return out
}

// Address reads the address group stored under prefix.
func (s FormState) Address(prefix string) address.Parts {
	return address.Parts{
		Street: s.Get(AddressKey(prefix, AddressStreet)),
		Unit:   s.Get(AddressKey(prefix, AddressUnit)),
		City:   s.Get(AddressKey(prefix, AddressCity)),
		State:  s.Get(AddressKey(prefix, AddressState)),
		Zip:    s.Get(AddressKey(prefix, AddressZip)),
	}
}

// SetAddress writes the non-empty parts of p under prefix.
func (s FormState) SetAddress(prefix string, p address.Parts) {
	values := map[AddressPart]string{
		AddressStreet: p.Street,
		AddressUnit:   p.Unit,
		AddressCity:   p.City,
		AddressState:  p.State,
		AddressZip:    p.Zip,
	}
	for part, value := range values {
		if value != "" {
			s.Set(AddressKey(prefix, part), value)
		}
	}
}
