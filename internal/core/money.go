// Package core provides the transaction record model and report types.
//
// This file contains the money accumulation used by the aggregation engine.
// Prices arrive as float64 from the dataset; sums are carried in decimal
// arithmetic so totals such as 0.1 + 0.2 come out as 0.3.
package core

import "github.com/shopspring/decimal"

// Amount accumulates prices without binary floating point drift.
type Amount struct {
	sum decimal.Decimal
}

// Add adds a price to the running total.
func (a *Amount) Add(price float64) {
	a.sum = a.sum.Add(decimal.NewFromFloat(price))
}

// Float64 returns the total for JSON output.
func (a Amount) Float64() float64 {
	return a.sum.InexactFloat64()
}

// String returns the exact decimal total.
func (a Amount) String() string {
	return a.sum.String()
}
