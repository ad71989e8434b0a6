package core

// Statistics summarises sold records of a month.
type Statistics struct {
	TotalSaleAmount float64 `json:"totalSaleAmount"`
	TotalSoldItems  int     `json:"totalSoldItems"`
}

// PriceRanges maps a band label to the number of records in that band.
// Every band label is always present.
type PriceRanges map[string]int

// NewPriceRanges returns a histogram with every band set to zero.
func NewPriceRanges() PriceRanges {
	pr := make(PriceRanges, len(PriceBands))
	for _, b := range PriceBands {
		pr[b.Label] = 0
	}
	return pr
}

// Add counts one record with the given price.
func (pr PriceRanges) Add(price float64) {
	pr[BandLabel(price)]++
}

// Total returns the sum of all band counts.
func (pr PriceRanges) Total() int {
	n := 0
	for _, c := range pr {
		n += c
	}
	return n
}

// Histogram is the bar chart payload.
type Histogram struct {
	PriceRanges  PriceRanges `json:"priceRanges"`
	NotSoldItems int         `json:"notSoldItems"`
}

// CategoryCount maps a category label to its record count.
type CategoryCount map[string]int

// CategoryReport is the pie chart payload.
type CategoryReport struct {
	Categories CategoryCount `json:"categories"`
}

// CombinedReport bundles statistics, histogram and categories of one month.
type CombinedReport struct {
	Statistics    Statistics    `json:"statistics"`
	PriceRanges   PriceRanges   `json:"priceRanges"`
	CategoryCount CategoryCount `json:"categoryCount"`
	NotSoldItems  int           `json:"notSoldItems"`
}
