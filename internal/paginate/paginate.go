// Package paginate slices in-memory result lists into pages and builds the
// page links shown under search results and review lists.
package paginate

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// window of page numbers shown around the current page
	linkWindow = 5
)

// Params are the page/per_page query parameters after defaulting.
type Params struct {
	Page    int
	PerPage int
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Parse reads raw page/per_page values. Missing or invalid values fall back to
// page 1 and DefaultPerPage; per_page is capped at MaxPerPage.
func Parse(pageRaw, perPageRaw string) Params {
	p := Params{
		Page:    parseInt(pageRaw, 1),
		PerPage: parseInt(perPageRaw, DefaultPerPage),
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Slice returns items[offset : offset+perPage], clamped to the list bounds.
func Slice[T any](items []T, offset, perPage int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || perPage <= 0 {
		return []T{}
	}
	end := offset + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Pagination describes the page links for a list of Total items.
type Pagination struct {
	Page     int
	PerPage  int
	Total    int
	Pages    int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	Numbers  []int
	BasePath string
}

func New(basePath string, p Params, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	pg := Pagination{
		Page:     p.Page,
		PerPage:  p.PerPage,
		Total:    total,
		Pages:    pages,
		HasPrev:  p.Page > 1,
		HasNext:  p.Page < pages,
		PrevPage: p.Page - 1,
		NextPage: p.Page + 1,
		BasePath: basePath,
	}

	lo := p.Page - linkWindow/2
	if lo < 1 {
		lo = 1
	}
	hi := lo + linkWindow - 1
	if hi > pages {
		hi = pages
		if lo = hi - linkWindow + 1; lo < 1 {
			lo = 1
		}
	}
	for n := lo; n <= hi; n++ {
		pg.Numbers = append(pg.Numbers, n)
	}
	return pg
}

// First is the 1-based index of the first item displayed, 0 when empty.
func (p Pagination) First() int {
	if p.Total == 0 {
		return 0
	}
	first := (p.Page-1)*p.PerPage + 1
	if first > p.Total {
		return p.Total
	}
	return first
}

// Last is the 1-based index of the last item displayed.
func (p Pagination) Last() int {
	last := p.Page * p.PerPage
	if last > p.Total {
		return p.Total
	}
	return last
}

// URL links to page n keeping the current per_page.
func (p Pagination) URL(n int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(n))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	return p.BasePath + "?" + q.Encode()
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
