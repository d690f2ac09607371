package query

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// ErrBadFilter is returned for query parameters that cannot be understood.
var ErrBadFilter = errors.New("invalid filter")

// Query parameter names shared by the API and the pages.
const (
	ParamCategory = "category"
	ParamCost     = "cost"
	ParamPayment  = "payment"
	ParamFrom     = "from"
	ParamTo       = "to"
)

// ParseItemFilter reads an inventory filter from query values.
func ParseItemFilter(v url.Values) (ItemFilter, error) {
	dates, err := parseDates(v)
	if err != nil {
		return ItemFilter{}, err
	}
	f := ItemFilter{Dates: dates, Categories: list(v, ParamCategory)}
	for _, c := range list(v, ParamCost) {
		b := CostBucket(c)
		if !slices.Contains(CostBuckets, b) {
			return ItemFilter{}, fmt.Errorf("%w: unknown cost range %q", ErrBadFilter, c)
		}
		f.Costs = append(f.Costs, b)
	}
	return f, nil
}

// ParseSaleFilter reads a sales filter from query values.
func ParseSaleFilter(v url.Values) (SaleFilter, error) {
	dates, err := parseDates(v)
	if err != nil {
		return SaleFilter{}, err
	}
	f := SaleFilter{Dates: dates, Categories: list(v, ParamCategory)}
	for _, p := range list(v, ParamPayment) {
		m := model.PaymentMethod(p)
		if !slices.Contains(model.PaymentMethods, m) {
			return SaleFilter{}, fmt.Errorf("%w: unknown payment method %q", ErrBadFilter, p)
		}
		f.Payments = append(f.Payments, m)
	}
	return f, nil
}

// list returns every non-empty value of key. Repeated keys and
// comma-separated values are both accepted.
func list(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func parseDates(v url.Values) (DateRange, error) {
	r := DateRange{
		From: strings.TrimSpace(v.Get(ParamFrom)),
		To:   strings.TrimSpace(v.Get(ParamTo)),
	}
	for _, d := range []string{r.From, r.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return DateRange{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrBadFilter, d)
		}
	}
	return r, nil
}
