// Package pagination slices ordered result sets into fixed-size, 1-indexed
// pages.
package pagination

import "strconv"

const DefaultPageSize = 10

// Paginator holds the page size for every list endpoint.
type Paginator struct {
	PageSize int
}

// Page is one resolved page of a result set.
type Page struct {
	Number   int
	NumPages int
	Total    int64
	Limit    int
	Offset   int
}

func New(pageSize int) Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Paginator{PageSize: pageSize}
}

// NumPages reports how many pages total items fill. An empty result still
// has one (empty) page.
func (p Paginator) NumPages(total int64) int {
	size := int64(p.size())
	if total <= 0 {
		return 1
	}
	return int((total + size - 1) / size)
}

// Page resolves the raw page query value against total. Values that are not
// integers select the first page; out-of-range values clamp to the first or
// last page.
func (p Paginator) Page(raw string, total int64) Page {
	number, err := strconv.Atoi(raw)
	if err != nil {
		number = 1
	}

	numPages := p.NumPages(total)
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	size := p.size()
	return Page{
		Number:   number,
		NumPages: numPages,
		Total:    total,
		Limit:    size,
		Offset:   (number - 1) * size,
	}
}

func (p Paginator) size() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}
