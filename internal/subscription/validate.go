package subscription

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
)

// fieldErrors collects every offending field so one error can report them all.
type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+f[name])
	}
	return apperr.Wrap(apperr.KindValidation, strings.Join(parts, "; "), ErrValidationFailed)
}

func (f fieldErrors) text(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "must not be empty"
	}
}

func (f fieldErrors) price(p decimal.Decimal) {
	if p.IsNegative() {
		f["price"] = "must not be negative"
	} else if !p.Equal(p.Round(2)) {
		f["price"] = "must have at most two decimals"
	}
}

func (f fieldErrors) features(features []string) {
	for i, feat := range features {
		if strings.TrimSpace(feat) == "" {
			f["features"] = fmt.Sprintf("entry %d must not be empty", i)
			return
		}
	}
}

func (f fieldErrors) duration(d Duration) {
	if !d.Valid() {
		f["duration"] = "must be one of monthly, quarterly, half_yearly, yearly"
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
