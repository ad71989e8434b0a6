package query

import (
	"testing"
	"time"

	"txdash/internal/core"
	"txdash/internal/store"
)

func sale(id int64, title string, price float64, category string, sold bool, month time.Month) core.Record {
	return core.Record{
		ID:          id,
		Title:       title,
		Description: title + " description",
		Price:       price,
		Category:    category,
		Sold:        sold,
		DateOfSale:  time.Date(2021, month, 15, 12, 0, 0, 0, time.UTC),
	}
}

// sampleRecords spans several months, bands and categories.
func sampleRecords() []core.Record {
	return []core.Record{
		sale(1, "Fjallraven Backpack", 329.85, "men's clothing", false, time.July),
		sale(2, "Slim Fit T-Shirt", 44.6, "men's clothing", false, time.March),
		sale(3, "Cotton Jacket", 615.89, "men's clothing", true, time.March),
		sale(4, "Casual Slim Fit", 31.98, "men's clothing", true, time.March),
		sale(5, "Gold Chain Bracelet", 6950, "jewelery", false, time.March),
		sale(6, "Solid Gold Petite", 168, "jewelery", true, time.March),
		sale(7, "Ring Kit", 9.99, "jewelery", true, time.August),
		sale(8, "Pierced Owl Earrings", 10.99, "jewelery", false, time.November),
		sale(9, "Portable Hard Drive", 64, "electronics", true, time.March),
		sale(10, "Internal SSD", 109, "electronics", false, time.January),
		sale(11, "Gaming Drive", 114, "electronics", true, time.December),
		sale(12, "Curved Monitor", 999.99, "electronics", true, time.March),
		sale(13, "Snowboard Jacket", 56.99, "women's clothing", false, time.April),
		sale(14, "Rain Jacket", 39.99, "women's clothing", true, time.March),
		sale(15, "Short Sleeve Top", 9.85, "women's clothing", false, time.June),
	}
}

func newService(t *testing.T, records []core.Record) *Service {
	t.Helper()
	s, err := store.New(records)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return NewService(s)
}
