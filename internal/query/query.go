// Package query implements the filter, sort and paginate steps shared by
// every list endpoint.
package query

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// ErrBadParam marks a malformed query parameter.
var ErrBadParam = errors.New("bad query parameter")

// Limits bounds page sizes.
type Limits struct {
	PerPage    int
	MaxPerPage int
}

// Page selects one page of results. Page is 1-based.
type Page struct {
	Page    int
	PerPage int
}

// ParsePage reads page and per_page from r. Missing values take the
// defaults; per_page is capped at the max and page is clamped to 1.
func ParsePage(r *http.Request, lim Limits) (Page, error) {
	p := Page{Page: 1, PerPage: lim.PerPage}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("%w: page=%q", ErrBadParam, v)
		}
		p.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("%w: per_page=%q", ErrBadParam, v)
		}
		p.PerPage = n
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = lim.PerPage
	}
	if lim.MaxPerPage > 0 && p.PerPage > lim.MaxPerPage {
		p.PerPage = lim.MaxPerPage
	}
	return p, nil
}

// Result is one page of a list plus the totals needed to render a pager.
type Result[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// Paginate slices items. A page past the end yields no items but keeps
// the totals.
func Paginate[T any](items []T, p Page) Result[T] {
	if p.PerPage < 1 {
		p.PerPage = 1
	}
	if p.Page < 1 {
		p.Page = 1
	}
	total := len(items)
	res := Result[T]{
		Items:   []T{},
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   total / p.PerPage,
	}
	if total%p.PerPage != 0 {
		res.Pages++
	}
	// Compare in pages so huge page numbers cannot overflow the offset.
	if p.Page-1 >= res.Pages {
		return res
	}
	start := (p.Page - 1) * p.PerPage
	end := total
	if p.PerPage < total-start {
		end = start + p.PerPage
	}
	res.Items = items[start:end]
	return res
}

// Map converts every item of a page, keeping the totals.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{
		Items:   make([]U, len(r.Items)),
		Total:   r.Total,
		Page:    r.Page,
		PerPage: r.PerPage,
		Pages:   r.Pages,
	}
	for i, it := range r.Items {
		out.Items[i] = fn(it)
	}
	return out
}

// SortSpec names a sort field and direction.
type SortSpec struct {
	Field string
	Desc  bool
}

// ParseSort reads sort=field or sort=-field and checks field against
// allowed. An empty parameter yields def.
func ParseSort(r *http.Request, def string, allowed []string) (SortSpec, error) {
	v := strings.TrimSpace(r.URL.Query().Get("sort"))
	if v == "" {
		v = def
	}
	spec := SortSpec{Field: v}
	if strings.HasPrefix(v, "-") {
		spec = SortSpec{Field: v[1:], Desc: true}
	}
	spec.Field = strings.ToLower(spec.Field)
	for _, a := range allowed {
		if a == spec.Field {
			return spec, nil
		}
	}
	return spec, fmt.Errorf("%w: sort=%q", ErrBadParam, v)
}

// Less compares two records on the sort field; it returns a negative
// number, zero or a positive number.
type Less[T any] func(a, b T) int

// Sort orders items stably by cmp in the spec's direction. Ties are
// broken by tie ascending regardless of direction.
func Sort[T any](items []T, spec SortSpec, cmp Less[T], tie Less[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if spec.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return tie(items[i], items[j]) < 0
	})
}

// Filter returns the items matching every predicate.
func Filter[T any](items []T, preds ...func(T) bool) []T {
	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range preds {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// OptionalInt parses an optional integer parameter; ok reports presence.
func OptionalInt(r *http.Request, name string) (n int, ok bool, err error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s=%q", ErrBadParam, name, v)
	}
	return n, true, nil
}

// CompareInt is a three-way comparison for ints.
func CompareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CompareFold compares strings case-insensitively.
func CompareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
