package query

import (
	"txdash/internal/core"
	"txdash/internal/store"
)

// ListParams are the already-coerced listing inputs.
type ListParams struct {
	Search   string
	Page     int
	PageSize int
}

// Service answers listing and report queries against one Store.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	store *store.Store
}

// NewService returns a Service reading from s.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Store returns the underlying snapshot.
func (s *Service) Store() *store.Store {
	return s.store
}

// List filters by search text only and paginates. The month a client may
// have selected is deliberately not applied here.
func (s *Service) List(p ListParams) Page {
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	filtered := FilterBySearch(s.store.Records(), p.Search)
	return NewPage(filtered, p.Page, p.PageSize)
}

// Statistics returns sold totals for month.
func (s *Service) Statistics(month int) (core.Statistics, error) {
	records, err := s.monthRecords(month)
	if err != nil {
		return core.Statistics{}, err
	}
	return Statistics(records), nil
}

// Histogram returns the price band counts for month.
func (s *Service) Histogram(month int) (core.Histogram, error) {
	records, err := s.monthRecords(month)
	if err != nil {
		return core.Histogram{}, err
	}
	return Histogram(records), nil
}

// Categories returns the category distribution for month.
func (s *Service) Categories(month int) (core.CategoryReport, error) {
	records, err := s.monthRecords(month)
	if err != nil {
		return core.CategoryReport{}, err
	}
	return Categories(records), nil
}

// Combined returns all month reports computed in one pass.
func (s *Service) Combined(month int) (core.CombinedReport, error) {
	records, err := s.monthRecords(month)
	if err != nil {
		return core.CombinedReport{}, err
	}
	return Combined(records), nil
}

func (s *Service) monthRecords(month int) ([]core.Record, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}
	return FilterByMonth(s.store.Records(), month), nil
}
