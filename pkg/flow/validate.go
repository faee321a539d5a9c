package flow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/mask"
	"github.com/goliatone/go-intake/pkg/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// valueSpec is the subset of a descriptor needed to check one value; steps
// and follow-ups both reduce to it.
type valueSpec struct {
	key      string
	label    string
	kind     model.StepKind
	mask     model.Mask
	max      *int
	required bool
	explicit bool
	options  []string
}

func stepSpec(step model.StepDescriptor) valueSpec {
	return valueSpec{
		key:      step.Key,
		label:    labelOf(step.Label, step.Key),
		kind:     step.Kind,
		mask:     step.Mask,
		max:      step.Max,
		required: step.Required,
		explicit: step.ExplicitSelection,
		options:  step.Options,
	}
}

func followUpSpec(fu *model.FollowUp) valueSpec {
	return valueSpec{
		key:      fu.Key,
		label:    labelOf(fu.Label, fu.Key),
		kind:     fu.Kind,
		mask:     fu.Mask,
		required: fu.Required,
		options:  fu.Options,
	}
}

func labelOf(label, key string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return key
}

// ValidateStep runs the validators for step against state. Consent is not
// checked here; it is a separate flag enforced on submission.
func ValidateStep(step model.StepDescriptor, state model.FormState) ValidationErrors {
	switch step.Kind {
	case model.KindAddressGroup:
		return validateAddress(step, state)
	case model.KindTerminalConsent:
		return nil
	default:
		return validateValue(stepSpec(step), state.Get(step.Key))
	}
}

// ValidateFollowUp checks a follow-up answer.
func ValidateFollowUp(fu *model.FollowUp, value string) ValidationErrors {
	if fu == nil {
		return nil
	}
	return validateValue(followUpSpec(fu), value)
}

func validateValue(spec valueSpec, raw string) ValidationErrors {
	value := strings.TrimSpace(raw)
	var errs ValidationErrors
	fail := func(rule Rule, format string, args ...any) {
		errs = append(errs, ValidationError{Key: spec.key, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	switch spec.kind {
	case model.KindSingleSelect, model.KindMultiOptionCard:
		if value == "" {
			switch {
			case spec.explicit:
				fail(RuleSelection, "Select a %s", strings.ToLower(spec.label))
			case spec.required:
				fail(RuleMissing, "%s is required", spec.label)
			}
			break
		}
		if optionIndex(spec.options, value) < 0 {
			fail(RuleSelection, "%q is not a valid choice for %s", value, spec.label)
		}

	case model.KindText, model.KindEmail, model.KindTel, model.KindDate, model.KindNumber, model.KindCurrency:
		if value == "" {
			if spec.required {
				fail(RuleMissing, "%s is required", spec.label)
			}
			break
		}
		if rule, msg, ok := checkFormat(spec, value); !ok {
			fail(rule, "%s", msg)
		}

	case model.KindAddressGroup, model.KindTerminalConsent:
		fail(RuleMalformed, "%s cannot hold a single value", spec.label)

	default:
		fail(RuleMalformed, "%s has unsupported kind %q", spec.label, spec.kind)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkFormat(spec valueSpec, value string) (Rule, string, bool) {
	digits := mask.StripNonDigits(value)
	switch spec.mask {
	case model.MaskTaxID:
		if len(digits) != 9 {
			return RuleMalformed, spec.label + " must be 9 digits (NN-NNNNNNN)", false
		}
	case model.MaskSSN:
		if len(digits) != 9 {
			return RuleMalformed, spec.label + " must be 9 digits (NNN-NN-NNNN)", false
		}
	case model.MaskPostalCode:
		if len(digits) != 5 {
			return RuleZipLength, spec.label + " must be exactly 5 digits", false
		}
	}

	switch spec.kind {
	case model.KindEmail:
		if !emailPattern.MatchString(value) {
			return RuleMalformed, "Enter a valid email address", false
		}
	case model.KindTel:
		if len(digits) != 10 {
			return RuleMalformed, spec.label + " must be a 10-digit phone number", false
		}
	case model.KindDate:
		if !validDate(value) {
			return RuleMalformed, spec.label + " must be a date (YYYY-MM-DD or MM/DD/YYYY)", false
		}
	case model.KindNumber:
		if digits != value {
			return RuleMalformed, spec.label + " must be a whole number", false
		}
		n, err := strconv.Atoi(digits)
		if err != nil || (spec.max != nil && n > *spec.max) {
			upper := "the allowed maximum"
			if spec.max != nil {
				upper = strconv.Itoa(*spec.max)
			}
			return RuleOutOfRange, fmt.Sprintf("%s must be between 0 and %s", spec.label, upper), false
		}
	case model.KindCurrency:
		if digits == "" {
			return RuleMalformed, spec.label + " must be a dollar amount", false
		}
	}
	return "", "", true
}

func validDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func validateAddress(step model.StepDescriptor, state model.FormState) ValidationErrors {
	parts := state.Address(step.GroupPrefix)
	if !step.Required && strings.TrimSpace(parts.Street+parts.Unit+parts.City+parts.State+parts.Zip) == "" {
		return nil
	}

	label := labelOf(step.Label, step.Key)
	var errs ValidationErrors
	required := []struct {
		part  model.AddressPart
		value string
		name  string
	}{
		{model.AddressStreet, parts.Street, "street"},
		{model.AddressCity, parts.City, "city"},
		{model.AddressState, parts.State, "state"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{
				Key:     model.AddressKey(step.GroupPrefix, r.part),
				Rule:    RuleMissing,
				Message: fmt.Sprintf("%s %s is required", label, r.name),
			})
		}
	}

	zipKey := model.AddressKey(step.GroupPrefix, model.AddressZip)
	zip := strings.TrimSpace(parts.Zip)
	switch {
	case zip == "":
		errs = append(errs, ValidationError{Key: zipKey, Rule: RuleMissing, Message: fmt.Sprintf("%s ZIP code is required", label)})
	case len(zip) != 5 || mask.StripNonDigits(zip) != zip:
		errs = append(errs, ValidationError{Key: zipKey, Rule: RuleZipLength, Message: "ZIP code must be exactly 5 digits"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// optionIndex finds value among options ignoring case and surrounding space.
func optionIndex(options []string, value string) int {
	needle := strings.TrimSpace(value)
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), needle) {
			return i
		}
	}
	return -1
}
