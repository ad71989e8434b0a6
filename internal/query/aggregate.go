package query

import "txdash/internal/core"

// Statistics sums the price and count of sold records.
func Statistics(records []core.Record) core.Statistics {
	var total core.Amount
	sold := 0
	for _, r := range records {
		if r.Sold {
			total.Add(r.Price)
			sold++
		}
	}
	return core.Statistics{TotalSaleAmount: total.Float64(), TotalSoldItems: sold}
}

// Histogram buckets every record by price band and counts unsold records.
func Histogram(records []core.Record) core.Histogram {
	h := core.Histogram{PriceRanges: core.NewPriceRanges()}
	for _, r := range records {
		h.PriceRanges.Add(r.Price)
		if !r.Sold {
			h.NotSoldItems++
		}
	}
	return h
}

// Categories counts records per category.
func Categories(records []core.Record) core.CategoryReport {
	counts := make(core.CategoryCount)
	for _, r := range records {
		counts[r.Category]++
	}
	return core.CategoryReport{Categories: counts}
}

// Combined computes statistics, histogram and categories in a single pass.
// The result equals calling Statistics, Histogram and Categories separately.
func Combined(records []core.Record) core.CombinedReport {
	var total core.Amount
	report := core.CombinedReport{
		PriceRanges:   core.NewPriceRanges(),
		CategoryCount: make(core.CategoryCount),
	}
	for _, r := range records {
		if r.Sold {
			total.Add(r.Price)
			report.Statistics.TotalSoldItems++
		} else {
			report.NotSoldItems++
		}
		report.PriceRanges.Add(r.Price)
		report.CategoryCount[r.Category]++
	}
	report.Statistics.TotalSaleAmount = total.Float64()
	return report
}
