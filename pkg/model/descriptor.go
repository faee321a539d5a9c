package model

import "github.com/goliatone/go-intake/pkg/rule"

// StepDescriptor is one entry of a Registry: a collected field, or for
// address groups a set of related fields sharing one step.
type StepDescriptor struct {
	Key         string   `json:"key"`
	Kind        StepKind `json:"kind"`
	Label       string   `json:"label,omitempty"`
	Help        string   `json:"help,omitempty"`
	Required    bool     `json:"required"`
	Mask        Mask     `json:"mask,omitempty"`
	Options     []string `json:"options,omitempty"`
	GroupPrefix string   `json:"groupPrefix,omitempty"`
	// ExplicitSelection demands a value from Options even when the step is
	// not Required.
	ExplicitSelection bool `json:"explicitSelection,omitempty"`
	// Max caps numeric input; larger values are clamped, not rejected.
	Max      *int       `json:"max,omitempty"`
	FollowUp *FollowUp  `json:"followUp,omitempty"`
	ShowWhen *Condition `json:"showWhen,omitempty"`
}

// FollowUp is a conditional sub-question asked after its parent step when the
// parent answer satisfies When.
type FollowUp struct {
	Key      string    `json:"key"`
	Kind     StepKind  `json:"kind"`
	Label    string    `json:"label,omitempty"`
	Mask     Mask      `json:"mask,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
	When     rule.Rule `json:"-"`
}

// Triggered reports whether answer opens the follow-up.
func (f *FollowUp) Triggered(answer string) bool {
	if f == nil || f.When == nil {
		return false
	}
	return f.When.Match(answer)
}

// Condition shows a step only when the answer stored under Key matches When.
type Condition struct {
	Key  string    `json:"key"`
	When rule.Rule `json:"-"`
}

// Satisfied evaluates the condition against state. A nil condition is always
// satisfied.
func (c *Condition) Satisfied(state FormState) bool {
	if c == nil {
		return true
	}
	if c.When == nil {
		return false
	}
	return c.When.Match(state.Get(c.Key))
}

// Visible reports whether the step takes part in navigation for state.
func (s StepDescriptor) Visible(state FormState) bool {
	return s.ShowWhen.Satisfied(state)
}

// StateKeys lists the FormState slots the step writes, excluding its
// follow-up. Address groups own their five sub-keys; the consent step owns
// no slot because consent is tracked separately.
func (s StepDescriptor) StateKeys() []string {
	switch s.Kind {
	case KindAddressGroup:
		keys := make([]string, 0, len(AddressParts()))
		for _, part := range AddressParts() {
			keys = append(keys, AddressKey(s.GroupPrefix, part))
		}
		return keys
	case KindTerminalConsent:
		return nil
	default:
		return []string{s.Key}
	}
}

// AddressPart identifies one sub-field of an address group.
type AddressPart string

const (
	AddressStreet AddressPart = "Street"
	AddressUnit   AddressPart = "Unit"
	AddressCity   AddressPart = "City"
	AddressState  AddressPart = "State"
	AddressZip    AddressPart = "Zip"
)

// AddressParts lists the sub-fields in display order.
func AddressParts() []AddressPart {
	return []AddressPart{AddressStreet, AddressUnit, AddressCity, AddressState, AddressZip}
}

// AddressKey derives the FormState key for an address sub-field, e.g.
// AddressKey("business", AddressZip) == "businessZip".
func AddressKey(prefix string, part AddressPart) string {
	return prefix + string(part)
}
