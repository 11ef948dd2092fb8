package dataset

import (
	"errors"
	"fmt"
)

// Page size bounds and viewer defaults.
const (
	MinPageSize     = 5
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// Page is one window of rows from a table. StartIndex and EndIndex are
// the zero-based half-open row bounds.
type Page struct {
	Columns    []string   `json:"columns" yaml:"columns"`
	Rows       [][]string `json:"rows" yaml:"rows"`
	PageNumber int        `json:"page" yaml:"page"`
	PageSize   int        `json:"page_size" yaml:"page_size"`
	TotalPages int        `json:"total_pages" yaml:"total_pages"`
	TotalRows  int        `json:"total_rows" yaml:"total_rows"`
	StartIndex int        `json:"start_index" yaml:"start_index"`
	EndIndex   int        `json:"end_index" yaml:"end_index"`
}

// Start returns the 1-based number of the first row shown, or 0 for an
// empty page.
func (p *Page) Start() int {
	if p.EndIndex <= p.StartIndex {
		return 0
	}
	return p.StartIndex + 1
}

// End returns the 1-based number of the last row shown.
func (p *Page) End() int { return p.EndIndex }

// HasPrev reports whether an earlier page exists.
func (p *Page) HasPrev() bool { return p.PageNumber > 1 }

// HasNext reports whether a later page exists.
func (p *Page) HasNext() bool { return p.PageNumber < p.TotalPages }

// ValidatePageSize checks size against the allowed bounds.
func ValidatePageSize(size int) error {
	if size < MinPageSize || size > MaxPageSize {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidPageSize, size, MinPageSize, MaxPageSize)
	}
	return nil
}

// TotalPages returns the page count for rows at the given size. An empty
// table still has one (empty) page.
func TotalPages(rows, size int) int {
	if size <= 0 || rows <= 0 {
		return 1
	}
	return (rows + size - 1) / size
}

// ClampPage limits page to [1, total].
func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Paginate returns the rows of the requested page. The page number is
// clamped into range; an out-of-range size is an error.
func Paginate(t *Table, size, page int) (*Page, error) {
	if t == nil {
		return nil, errors.New("paginate: nil table")
	}
	if err := ValidatePageSize(size); err != nil {
		return nil, err
	}

	total := TotalPages(t.NumRows(), size)
	page = ClampPage(page, total)

	start := (page - 1) * size
	end := start + size
	if end > t.NumRows() {
		end = t.NumRows()
	}
	if start > end {
		start = end
	}

	return &Page{
		Columns:    t.ColumnNames(),
		Rows:       t.Rows(start, end),
		PageNumber: page,
		PageSize:   size,
		TotalPages: total,
		TotalRows:  t.NumRows(),
		StartIndex: start,
		EndIndex:   end,
	}, nil
}
