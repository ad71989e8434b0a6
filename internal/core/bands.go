package core

import (
	"math"
	"sort"
)

// PriceBand is a histogram bucket covering prices up to and including Upper.
type PriceBand struct {
	Upper float64
	Label string
}

// PriceBands is sorted by Upper; the last band is unbounded.
var PriceBands = []PriceBand{
	{Upper: 100, Label: "0-100"},
	{Upper: 200, Label: "101-200"},
	{Upper: 300, Label: "201-300"},
	{Upper: 400, Label: "301-400"},
	{Upper: 500, Label: "401-500"},
	{Upper: 600, Label: "501-600"},
	{Upper: 700, Label: "601-700"},
	{Upper: 800, Label: "701-800"},
	{Upper: 900, Label: "801-900"},
	{Upper: math.Inf(1), Label: "901-above"},
}

// BandIndex returns the index in PriceBands of the first band whose upper
// bound is >= price.
func BandIndex(price float64) int {
	i := sort.Search(len(PriceBands), func(i int) bool {
		return price <= PriceBands[i].Upper
	})
	if i == len(PriceBands) {
		// NaN compares false against every bound
		i = len(PriceBands) - 1
	}
	return i
}

// BandLabel returns the label of the band holding price.
func BandLabel(price float64) string {
	return PriceBands[BandIndex(price)].Label
}
