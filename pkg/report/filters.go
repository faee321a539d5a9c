package report

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-intake/pkg/mask"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/scoring"
)

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("statusmark") {
			_ = pongo2.RegisterFilter("statusmark", filterStatusMark)
		}
		if !pongo2.FilterExists("redact") {
			_ = pongo2.RegisterFilter("redact", filterRedact)
		}
	})
}

func filterStatusMark(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch scoring.Status(in.String()) {
	case scoring.StatusPositive:
		return pongo2.AsValue("+"), nil
	case scoring.StatusNegative:
		return pongo2.AsValue("-"), nil
	default:
		return pongo2.AsValue("~"), nil
	}
}

// filterRedact hides all but the last four digits of identity numbers.
func filterRedact(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	value := in.String()
	if param == nil {
		return pongo2.AsValue(value), nil
	}
	switch model.Mask(param.String()) {
	case model.MaskSSN:
		return pongo2.AsValue("***-**-" + lastDigits(value, 4)), nil
	case model.MaskTaxID:
		return pongo2.AsValue("**-***" + lastDigits(value, 4)), nil
	default:
		return pongo2.AsValue(value), nil
	}
}

func lastDigits(value string, n int) string {
	digits := mask.StripNonDigits(value)
	if len(digits) <= n {
		return strings.Repeat("*", n-len(digits)) + digits
	}
	return digits[len(digits)-n:]
}
