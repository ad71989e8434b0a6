// Package query implements filtering, pagination and aggregation over the
// record store, and the Service that the transports call into.
package query

import (
	"strings"

	"txdash/internal/core"
)

// FilterByMonth returns the records sold in month. The month must already be
// validated; an out-of-range value simply matches nothing.
func FilterByMonth(records []core.Record, month int) []core.Record {
	out := make([]core.Record, 0, len(records)/12+1)
	for _, r := range records {
		if r.Month() == month {
			out = append(out, r)
		}
	}
	return out
}

// FilterBySearch returns the records whose title, description or price text
// contains text, ignoring case. Blank text returns records unchanged.
func FilterBySearch(records []core.Record, text string) []core.Record {
	if strings.TrimSpace(text) == "" {
		return records
	}
	needle := strings.ToLower(text)

	out := make([]core.Record, 0)
	for _, r := range records {
		if matches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r core.Record, needle string) bool {
	return strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(r.PriceText(), needle)
}
