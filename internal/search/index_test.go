package search

import (
	"cmp"
	"errors"
	"slices"
	"testing"
	"time"

	"leadscout_backend/platform/apperr"
)

type item struct {
	ID        int
	Title     string
	Body      string
	Status    string
	Platforms []string
	Quality   int
	CreatedAt time.Time
}

func newItemIndex() *Index[item] {
	return NewIndex[item]().
		Text(func(i item) string { return i.Title }, func(i item) string { return i.Body }).
		Facet("status", func(i item) []string { return []string{i.Status} }).
		Facet("platform", func(i item) []string { return i.Platforms }).
		Sort("date", func(a, b item) int { return a.CreatedAt.Compare(b.CreatedAt) }).
		Sort("title", func(a, b item) int { return cmp.Compare(a.Title, b.Title) }).
		Sort("quality", func(a, b item) int { return cmp.Compare(a.Quality, b.Quality) }).
		DefaultSort("date", SortDesc)
}

func ids(seq []item) []int {
	out := make([]int, len(seq))
	for i, it := range seq {
		out[i] = it.ID
	}
	return out
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func statusItems() []item {
	// Same timestamp on purpose: the default date sort must keep insertion order for ties.
	return []item{
		{ID: 1, Title: "Draft post", Status: "draft", CreatedAt: base},
		{ID: 2, Title: "Launch post", Status: "published", CreatedAt: base},
		{ID: 3, Title: "Old post", Status: "archived", CreatedAt: base},
	}
}

func TestApplyAllSentinelKeepsEverything(t *testing.T) {
	ix := newItemIndex()
	got := slices.Collect(ix.Apply(statusItems(), Query{Filters: map[string]string{"status": "all"}, Search: ""}))
	if !slices.Equal(ids(got), []int{1, 2, 3}) {
		t.Fatalf("got %v, want [1 2 3]", ids(got))
	}
}

func TestApplyFacetFilter(t *testing.T) {
	ix := newItemIndex()
	got := slices.Collect(ix.Apply(statusItems(), Query{Filters: map[string]string{"status": "published"}}))
	if !slices.Equal(ids(got), []int{2}) {
		t.Fatalf("got %v, want [2]", ids(got))
	}
}

func TestApplySearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	items := []item{
		{ID: 1, Title: "Growth ÉCOLE", Body: "", CreatedAt: base},
		{ID: 2, Title: "Other", Body: "mentions growth hacking", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "Nothing", Body: "here", CreatedAt: base.Add(2 * time.Hour)},
	}
	ix := newItemIndex()

	got := slices.Collect(ix.Apply(items, Query{Search: "  GROWTH "}))
	if !slices.Equal(ids(got), []int{2, 1}) {
		t.Fatalf("got %v, want [2 1]", ids(got))
	}

	got = slices.Collect(ix.Apply(items, Query{Search: "école"}))
	if !slices.Equal(ids(got), []int{1}) {
		t.Fatalf("folded search got %v, want [1]", ids(got))
	}
}

func TestApplyMultiValuedFacetAndAnd(t *testing.T) {
	items := []item{
		{ID: 1, Status: "published", Platforms: []string{"linkedin", "twitter"}, CreatedAt: base},
		{ID: 2, Status: "draft", Platforms: []string{"twitter"}, CreatedAt: base},
		{ID: 3, Status: "published", Platforms: []string{"instagram"}, CreatedAt: base},
	}
	ix := newItemIndex()
	got := slices.Collect(ix.Apply(items, Query{Filters: map[string]string{"status": "Published", "platform": "twitter"}}))
	if !slices.Equal(ids(got), []int{1}) {
		t.Fatalf("got %v, want [1]", ids(got))
	}
}

func TestApplySortIsStable(t *testing.T) {
	items := []item{
		{ID: 1, Quality: 5, CreatedAt: base},
		{ID: 2, Quality: 9, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Quality: 5, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Quality: 9, CreatedAt: base.Add(3 * time.Hour)},
	}
	ix := newItemIndex()

	asc := slices.Collect(ix.Apply(items, Query{SortBy: "quality", SortOrder: SortAsc}))
	if !slices.Equal(ids(asc), []int{1, 3, 2, 4}) {
		t.Fatalf("asc got %v", ids(asc))
	}
	desc := slices.Collect(ix.Apply(items, Query{SortBy: "quality", SortOrder: SortDesc}))
	if !slices.Equal(ids(desc), []int{2, 4, 1, 3}) {
		t.Fatalf("desc got %v", ids(desc))
	}
	byDate := slices.Collect(ix.Apply(items, Query{}))
	if !slices.Equal(ids(byDate), []int{4, 3, 2, 1}) {
		t.Fatalf("default sort got %v, want date desc", ids(byDate))
	}
	if !slices.Equal(ids(items), []int{1, 2, 3, 4}) {
		t.Fatalf("Apply must not reorder its input")
	}
}

func TestApplyIsLazyAndRestartable(t *testing.T) {
	items := statusItems()
	ix := newItemIndex()
	seq := ix.Apply(items, Query{Filters: map[string]string{"status": "draft"}})

	first := slices.Collect(seq)
	items[1].Status = "draft"
	second := slices.Collect(seq)

	if len(first) != 1 || len(second) != 2 {
		t.Fatalf("sequence must re-filter on every range: first=%v second=%v", ids(first), ids(second))
	}

	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("early break must stop iteration")
	}
}

func TestPage(t *testing.T) {
	items := make([]item, 45)
	for i := range items {
		items[i] = item{ID: i + 1, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	ix := newItemIndex()

	page := ix.Page(items, Query{Page: 3, PageSize: 20, SortBy: "date", SortOrder: SortAsc})
	if page.Total != 45 || page.TotalPages != 3 || len(page.Items) != 5 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].ID != 41 {
		t.Fatalf("first item on page 3 = %d, want 41", page.Items[0].ID)
	}

	beyond := ix.Page(items, Query{Page: 9})
	if len(beyond.Items) != 0 || beyond.Total != 45 {
		t.Fatalf("page past the end must be empty with the full total")
	}

	huge := ix.Page(items, Query{Page: 100000000000000001, PageSize: 100})
	if len(huge.Items) != 0 || huge.Total != 45 || huge.Page != 100000000000000001 {
		t.Fatalf("huge page = %d items, total %d, page %d", len(huge.Items), huge.Total, huge.Page)
	}

	defaults := ix.Page(items, Query{PageSize: 1000})
	if defaults.Page != 1 || defaults.PageSize != 100 {
		t.Fatalf("paging defaults = %d/%d, want 1/100", defaults.Page, defaults.PageSize)
	}
}

func TestValidate(t *testing.T) {
	ix := newItemIndex()
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{name: "known", q: Query{Filters: map[string]string{"status": "all"}, SortBy: "title", SortOrder: "DESC"}},
		{name: "unknown facet", q: Query{Filters: map[string]string{"colour": "red"}}, wantErr: true},
		{name: "unknown sort", q: Query{SortBy: "popularity"}, wantErr: true},
		{name: "bad order", q: Query{SortOrder: "sideways"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ix.Validate(tt.q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var appErr *apperr.Error
				if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
					t.Fatalf("expected bad request, got %v", err)
				}
			}
		})
	}
}
