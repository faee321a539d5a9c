package flow

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/mask"
	"github.com/goliatone/go-intake/pkg/model"
)

// Normalize turns a raw keystroke value into the display form stored for
// field. Normalisation never rejects input; validation happens on advance.
func Normalize(field model.Field, raw string, options []string) (string, error) {
	switch field.Kind {
	case model.KindText:
		return mask.Apply(field.Mask, mask.SanitizeText(raw)), nil
	case model.KindEmail:
		return strings.TrimSpace(mask.SanitizeText(raw)), nil
	case model.KindTel:
		m := field.Mask
		if m == model.MaskNone {
			m = model.MaskPhone
		}
		return mask.Apply(m, raw), nil
	case model.KindDate:
		return strings.TrimSpace(raw), nil
	case model.KindNumber:
		if field.Max != nil {
			return mask.Clamp(raw, *field.Max), nil
		}
		return mask.StripNonDigits(raw), nil
	case model.KindCurrency:
		return mask.Currency(raw), nil
	case model.KindSingleSelect, model.KindMultiOptionCard:
		value := strings.TrimSpace(raw)
		if idx := optionIndex(options, value); idx >= 0 {
			return options[idx], nil
		}
		return value, nil
	case model.KindAddressGroup:
		return normalizeAddressPart(field.Part, raw), nil
	case model.KindTerminalConsent:
		return "", fmt.Errorf("flow: %s has no value slot; use SetConsent", field.Key)
	default:
		return "", fmt.Errorf("flow: %s has unsupported kind %q", field.Key, field.Kind)
	}
}

func normalizeAddressPart(part model.AddressPart, raw string) string {
	switch part {
	case model.AddressZip:
		return mask.PostalCode(raw)
	case model.AddressState:
		return strings.ToUpper(strings.TrimSpace(mask.SanitizeText(raw)))
	default:
		return mask.SanitizeText(raw)
	}
}
