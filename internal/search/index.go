package search

import (
	"iter"
	"slices"
	"strings"

	"leadscout_backend/platform/apperr"

	"golang.org/x/text/cases"
)

// AllValues is the filter sentinel meaning "no constraint". An empty value means the same.
const AllValues = "all"

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// SortOrder is the direction of a sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query is a user-driven view over a collection.
type Query struct {
	Search    string
	Filters   map[string]string
	SortBy    string
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// PageResult is one materialized page of a query.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Index describes how to search, filter and sort items of type T. It holds
// configuration only, never items or cursors, so one Index can serve any
// number of concurrent queries.
type Index[T any] struct {
	text         []func(T) string
	facets       map[string]func(T) []string
	sorts        map[string]func(a, b T) int
	defaultSort  string
	defaultOrder SortOrder
}

// NewIndex creates an empty index. Configure it with Text, Facet, Sort and DefaultSort.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{
		facets:       make(map[string]func(T) []string),
		sorts:        make(map[string]func(a, b T) int),
		defaultOrder: SortDesc,
	}
}

// Text adds fields matched by the free-text search.
func (ix *Index[T]) Text(fields ...func(T) string) *Index[T] {
	ix.text = append(ix.text, fields...)
	return ix
}

// Facet adds a categorical filter. An item may carry several values.
func (ix *Index[T]) Facet(name string, values func(T) []string) *Index[T] {
	ix.facets[name] = values
	return ix
}

// Sort adds a named ascending comparator.
func (ix *Index[T]) Sort(name string, cmp func(a, b T) int) *Index[T] {
	ix.sorts[name] = cmp
	return ix
}

// DefaultSort selects the sort used when a query names none.
func (ix *Index[T]) DefaultSort(name string, order SortOrder) *Index[T] {
	ix.defaultSort = name
	ix.defaultOrder = order
	return ix
}

// FacetNames lists the configured facets alphabetically.
func (ix *Index[T]) FacetNames() []string {
	return sortedKeys(ix.facets)
}

// SortNames lists the configured sort keys alphabetically.
func (ix *Index[T]) SortNames() []string {
	return sortedKeys(ix.sorts)
}

// Validate rejects facets, sort keys and sort orders the index does not know.
func (ix *Index[T]) Validate(q Query) error {
	for name := range q.Filters {
		if _, ok := ix.facets[name]; !ok {
			return apperr.BadRequest("unknown filter: " + name).WithDetails(map[string][]string{"filters": ix.FacetNames()})
		}
	}
	if q.SortBy != "" {
		if _, ok := ix.sorts[q.SortBy]; !ok {
			return apperr.BadRequest("unknown sort field: " + q.SortBy).WithDetails(map[string][]string{"sortBy": ix.SortNames()})
		}
	}
	switch SortOrder(strings.ToLower(string(q.SortOrder))) {
	case "", SortAsc, SortDesc:
	default:
		return apperr.BadRequest("sort order must be asc or desc")
	}
	return nil
}

// Apply returns the filtered, sorted view of items as a lazy sequence. The
// work happens on each range over the result, so the sequence can be
// restarted and always reflects the current contents of items. Sorting is
// stable: ties keep their order in items. Unknown facets and sort keys are
// ignored here; use Validate to reject them.
func (ix *Index[T]) Apply(items []T, q Query) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range ix.run(items, q) {
			if !yield(item) {
				return
			}
		}
	}
}

// Page materializes the requested page of Apply.
func (ix *Index[T]) Page(items []T, q Query) PageResult[T] {
	page, pageSize := normalizePaging(q.Page, q.PageSize)
	all := ix.run(items, q)
	total := len(all)

	// Compare page counts first; (page-1)*pageSize overflows for huge pages.
	start := total
	if page-1 <= total/pageSize {
		start = (page - 1) * pageSize
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageItems := make([]T, end-start)
	copy(pageItems, all[start:end])

	totalPages := (total + pageSize - 1) / pageSize
	return PageResult[T]{
		Items:      pageItems,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func (ix *Index[T]) run(items []T, q Query) []T {
	// cases.Caser keeps state, so each run gets its own.
	caser := cases.Fold()
	needle := caser.String(strings.TrimSpace(q.Search))
	filters := ix.activeFilters(q.Filters)

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !ix.matchesText(caser, item, needle) {
			continue
		}
		if !matchesFilters(item, filters) {
			continue
		}
		matched = append(matched, item)
	}

	if cmp := ix.comparator(q); cmp != nil {
		slices.SortStableFunc(matched, cmp)
	}
	return matched
}

type activeFilter[T any] struct {
	values func(T) []string
	want   string
}

func (ix *Index[T]) activeFilters(filters map[string]string) []activeFilter[T] {
	active := make([]activeFilter[T], 0, len(filters))
	for name, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, AllValues) {
			continue
		}
		values, ok := ix.facets[name]
		if !ok {
			continue
		}
		active = append(active, activeFilter[T]{values: values, want: value})
	}
	return active
}

func matchesFilters[T any](item T, filters []activeFilter[T]) bool {
	for _, f := range filters {
		found := false
		for _, v := range f.values(item) {
			if strings.EqualFold(strings.TrimSpace(v), f.want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (ix *Index[T]) matchesText(caser cases.Caser, item T, needle string) bool {
	for _, field := range ix.text {
		if strings.Contains(caser.String(field(item)), needle) {
			return true
		}
	}
	return false
}

func (ix *Index[T]) comparator(q Query) func(a, b T) int {
	name := q.SortBy
	if _, ok := ix.sorts[name]; !ok {
		name = ix.defaultSort
	}
	cmp, ok := ix.sorts[name]
	if !ok {
		return nil
	}

	order := SortOrder(strings.ToLower(string(q.SortOrder)))
	if order == "" {
		order = SortAsc
		if name == ix.defaultSort {
			order = ix.defaultOrder
		}
	}
	if order == SortDesc {
		return func(a, b T) int { return cmp(b, a) }
	}
	return cmp
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
