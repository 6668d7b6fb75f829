package domain

import "fmt"

// Page is a 1-based pagination request.
type Page struct {
	Number  int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPage validates a page request. A zero perPage selects defaultPerPage and
// anything above maxPerPage is clamped.
func NewPage(number, perPage, defaultPerPage, maxPerPage int) (Page, error) {
	if number < 1 {
		return Page{}, fmt.Errorf("%w: page must be 1 or greater", ErrValidation)
	}
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if perPage < 1 {
		return Page{}, fmt.Errorf("%w: per_page must be 1 or greater", ErrValidation)
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Page{Number: number, PerPage: perPage}, nil
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit returns the page size.
func (p Page) Limit() int {
	return p.PerPage
}

// TotalPages returns ceil(total / perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// PageResult is one page of a counted result set.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult assembles a PageResult for page p.
func NewPageResult[T any](items []T, total int, p Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       p.Number,
		PerPage:    p.PerPage,
		TotalPages: TotalPages(total, p.PerPage),
	}
}
