package http

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"txdash/internal/core"
	"txdash/internal/query"
)

var (
	ErrInvalidPage     = errors.New("invalid page")
	ErrInvalidPageSize = errors.New("invalid per_page")
)

// clientMessage maps a request error to the body clients receive.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		return "Invalid month"
	case errors.Is(err, ErrInvalidPage):
		return "Invalid page"
	case errors.Is(err, ErrInvalidPageSize):
		return "Invalid per_page"
	default:
		return "Bad request"
	}
}

// parseMonth reads the required month query value.
func parseMonth(q url.Values) (int, error) {
	return core.ParseMonth(q.Get("month"))
}

// parseListParams reads search, page and per_page (alias pageSize).
// A page below 1 is passed through and yields an empty page.
func parseListParams(q url.Values) (query.ListParams, error) {
	p := query.ListParams{
		Search:   q.Get("search"),
		Page:     query.DefaultPage,
		PageSize: query.DefaultPageSize,
	}

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, ErrInvalidPage
		}
		p.Page = n
	}

	raw := q.Get("per_page")
	if raw == "" {
		raw = q.Get("pageSize")
	}
	if v := strings.TrimSpace(raw); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, ErrInvalidPageSize
		}
		p.PageSize = n
	}

	return p, nil
}
