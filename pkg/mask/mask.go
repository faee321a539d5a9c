// Package mask turns raw keystrokes into the constrained display form of a
// field and back into the canonical storage form. Every function is pure,
// accepts the empty string and is idempotent: applying a mask to its own
// output returns the same value.
package mask

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	taxIDDigits      = 9
	ssnDigits        = 9
	phoneDigits      = 10
	postalCodeDigits = 5
	currencyDigits   = 15
)

// StripNonDigits removes everything except 0-9.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digits(s string, limit int) string {
	d := StripNonDigits(s)
	if len(d) > limit {
		d = d[:limit]
	}
	return d
}

// TaxID formats an employer id as NN-NNNNNNN once three digits are present.
func TaxID(s string) string {
	d := digits(s, taxIDDigits)
	if len(d) < 3 {
		return d
	}
	return d[:2] + "-" + d[2:]
}

// SSN groups up to nine digits as NNN, NNN-NN, NNN-NN-NNNN.
func SSN(s string) string {
	d := digits(s, ssnDigits)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 5:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:5] + "-" + d[5:]
	}
}

// Phone groups up to ten digits as NNN, NNN-NNN, NNN-NNN-NNNN.
func Phone(s string) string {
	d := digits(s, phoneDigits)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	}
}

// PostalCode keeps the first five digits.
func PostalCode(s string) string {
	return digits(s, postalCodeDigits)
}

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// Currency formats whole dollars with grouping, e.g. "1234" -> "$1,234".
func Currency(s string) string {
	amount := currencyAmount(s)
	if amount == "" {
		return ""
	}
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return ""
	}
	return currencyPrinter.Sprintf("$%d", n)
}

// currencyAmount reduces input to a digit string without leading zeros.
func currencyAmount(s string) string {
	d := StripNonDigits(s)
	if d == "" {
		return ""
	}
	d = strings.TrimLeft(d, "0")
	if d == "" {
		return "0"
	}
	if len(d) > currencyDigits {
		d = d[:currencyDigits]
	}
	return d
}

// Clamp keeps the digits of s and caps the resulting number at limit.
// Values above the cap become the cap.
func Clamp(s string, limit int) string {
	d := StripNonDigits(s)
	if d == "" {
		return ""
	}
	d = strings.TrimLeft(d, "0")
	if d == "" {
		return "0"
	}
	n, err := strconv.Atoi(d)
	if err != nil || n > limit {
		return strconv.Itoa(limit)
	}
	return strconv.Itoa(n)
}

// Apply runs the keystroke mask m over raw. MaskNone returns raw unchanged.
func Apply(m model.Mask, raw string) string {
	switch m {
	case model.MaskTaxID:
		return TaxID(raw)
	case model.MaskSSN:
		return SSN(raw)
	case model.MaskPhone:
		return Phone(raw)
	case model.MaskCurrency:
		return Currency(raw)
	case model.MaskPostalCode:
		return PostalCode(raw)
	default:
		return raw
	}
}

// Canonical converts a display value back to storage form: digits for
// id/phone/postal masks and a plain integer string for currency.
func Canonical(m model.Mask, display string) string {
	switch m {
	case model.MaskTaxID, model.MaskSSN, model.MaskPhone, model.MaskPostalCode:
		return StripNonDigits(display)
	case model.MaskCurrency:
		return currencyAmount(display)
	default:
		return display
	}
}
