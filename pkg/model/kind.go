package model

import (
	"fmt"
	"strings"
)

// StepKind is the closed enumeration of step kinds. Renderers and validators
// switch over every value and treat anything else as an error.
type StepKind string

const (
	KindText            StepKind = "text"
	KindEmail           StepKind = "email"
	KindTel             StepKind = "tel"
	KindDate            StepKind = "date"
	KindNumber          StepKind = "number"
	KindCurrency        StepKind = "currency"
	KindSingleSelect    StepKind = "single-select"
	KindMultiOptionCard StepKind = "multi-option-card"
	KindAddressGroup    StepKind = "address-group"
	KindTerminalConsent StepKind = "terminal-consent"
)

// Kinds lists every StepKind in declaration order.
func Kinds() []StepKind {
	return []StepKind{
		KindText,
		KindEmail,
		KindTel,
		KindDate,
		KindNumber,
		KindCurrency,
		KindSingleSelect,
		KindMultiOptionCard,
		KindAddressGroup,
		KindTerminalConsent,
	}
}

// Valid reports whether k is a known kind.
func (k StepKind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// IsSelect reports whether the kind picks from a declared option list.
func (k StepKind) IsSelect() bool {
	return k == KindSingleSelect || k == KindMultiOptionCard
}

// ParseStepKind resolves a kind from its textual form.
func ParseStepKind(value string) (StepKind, error) {
	kind := StepKind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("model: unknown step kind %q", value)
	}
	return kind, nil
}

// Mask names the keystroke normaliser applied to a field.
type Mask string

const (
	MaskNone       Mask = ""
	MaskTaxID      Mask = "tax-id"
	MaskSSN        Mask = "ssn"
	MaskPhone      Mask = "phone"
	MaskCurrency   Mask = "currency"
	MaskPostalCode Mask = "postal-code"
)

// Masks lists every non-empty mask.
func Masks() []Mask {
	return []Mask{MaskTaxID, MaskSSN, MaskPhone, MaskCurrency, MaskPostalCode}
}

// ParseMask resolves a mask from its textual form. The empty string maps to
// MaskNone.
func ParseMask(value string) (Mask, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return MaskNone, nil
	}
	for _, m := range Masks() {
		if Mask(trimmed) == m {
			return m, nil
		}
	}
	return MaskNone, fmt.Errorf("model: unknown mask %q", value)
}
