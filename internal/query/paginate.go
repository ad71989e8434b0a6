package query

import "txdash/internal/core"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Page is one slice of a listing plus the metadata the table view needs.
type Page struct {
	TotalItems   int           `json:"totalItems"`
	TotalPages   int           `json:"totalPages"`
	CurrentPage  int           `json:"currentPage"`
	ItemsPerPage int           `json:"itemsPerPage"`
	Items        []core.Record `json:"items"`
}

// Paginate returns records[(page-1)*pageSize : page*pageSize] clipped to the
// available range. Pages before the first or past the last yield an empty
// slice rather than an error. pageSize must be positive. The page bounds are
// checked before any multiplication so huge page or pageSize values cannot
// overflow.
func Paginate(records []core.Record, page, pageSize int) []core.Record {
	if page < 1 || pageSize < 1 {
		return []core.Record{}
	}
	if page-1 >= TotalPages(len(records), pageSize) {
		return []core.Record{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(records)-start)
	return records[start:end:end]
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total < 1 {
		return 0
	}
	return (total-1)/pageSize + 1
}

// NewPage paginates filtered and fills in the listing metadata.
func NewPage(filtered []core.Record, page, pageSize int) Page {
	items := Paginate(filtered, page, pageSize)
	if items == nil {
		items = []core.Record{}
	}
	return Page{
		TotalItems:   len(filtered),
		TotalPages:   TotalPages(len(filtered), pageSize),
		CurrentPage:  page,
		ItemsPerPage: pageSize,
		Items:        items,
	}
}
