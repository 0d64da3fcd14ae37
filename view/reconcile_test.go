package view

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-variant-patients/patients"
	"github.com/goliatone/go-variant-patients/pkg/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entryStore serves slices straight from in-memory entries.
type entryStore map[string]patients.Entry

func (s entryStore) Lookup(tech patients.Technology, key string, filter patients.Filter) (patients.Slice, bool) {
	entry, ok := s[string(tech)+"/"+key]
	if !ok {
		return patients.Slice{}, false
	}
	return entry.Slice(filter)
}

func storeWith(entries ...patients.Entry) entryStore {
	s := entryStore{}
	for _, e := range entries {
		s[string(e.Technology)+"/"+e.Key] = e
	}
	return s
}

func TestReconcile_MissingSliceIsNoop(t *testing.T) {
	_, ok := Reconcile(entryStore{}, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, Page: 1})
	assert.False(t, ok)
}

func TestReconcile_TwoPatientScenario(t *testing.T) {
	p1 := patients.Record{PatientID: "p1", Genotype: "0/1", Gender: "XX", Diagnosis: "Epilepsy"}
	p2 := patients.Record{PatientID: "p2", Genotype: "1/1", Gender: "XY", Diagnosis: "Ataxia"}
	store := storeWith(testsupport.Entry(patients.ShortRead, "k", []patients.Record{p1}, []patients.Record{p2}))

	page, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, Page: 1})
	require.True(t, ok)

	assert.Equal(t, []patients.Record{p1, p2}, page.Patients)
	assert.Equal(t, 2, page.TotalMatched)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.HomoCount)
	assert.Equal(t, 1, page.HeteroCount)

	searched, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, SearchTerm: "xy", Page: 1})
	require.True(t, ok)
	assert.Equal(t, []patients.Record{p2}, searched.Patients)
	assert.Equal(t, 1, searched.TotalMatched)
}

func TestReconcile_ServesServerPages(t *testing.T) {
	entry := testsupport.Entry(patients.ShortRead, "k", testsupport.Records("het", 120, "0/1"), testsupport.Records("hom", 7, "1/1"))
	store := storeWith(entry)

	page, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterHetero, Page: 3})
	require.True(t, ok)

	het, _ := entry.Slice(patients.FilterHetero)
	assert.Equal(t, het.Pages[2], page.Patients)
	assert.Len(t, page.Patients, 20)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 120, page.TotalMatched)

	// Counts come from the "all" slice, not the active filter.
	assert.Equal(t, 7, page.HomoCount)
	assert.Equal(t, 120, page.HeteroCount)
}

func TestReconcile_OutOfRangeServerPageIsEmpty(t *testing.T) {
	store := storeWith(testsupport.Entry(patients.ShortRead, "k", testsupport.Records("het", 10, "0/1"), nil))

	page, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, Page: 9})
	require.True(t, ok)

	assert.True(t, page.Empty())
	assert.NotNil(t, page.Patients)
	assert.Equal(t, 9, page.CurrentPage)
	assert.Equal(t, 1, page.TotalPages)
}

func TestReconcile_SearchRepaginatesAndClamps(t *testing.T) {
	recs := testsupport.Records("het", 130, "0/1")
	store := storeWith(testsupport.Entry(patients.LongRead, "chr1:1", recs, nil))

	// Every record matches "0/1", so 130 records become 3 client pages.
	page, ok := Reconcile(store, Request{Technology: patients.LongRead, Key: "chr1:1", Filter: patients.FilterAll, SearchTerm: "0/1", Page: 99})
	require.True(t, ok)

	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 130, page.TotalMatched)
	assert.Equal(t, recs[100:], page.Patients)

	page, ok = Reconcile(store, Request{Technology: patients.LongRead, Key: "chr1:1", Filter: patients.FilterAll, SearchTerm: "0/1", Page: -4})
	require.True(t, ok)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, recs[:50], page.Patients)
}

func TestReconcile_SearchWithNoMatches(t *testing.T) {
	store := storeWith(testsupport.Entry(patients.ShortRead, "k", testsupport.Records("het", 10, "0/1"), nil))

	page, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, SearchTerm: "zzz", Page: 4})
	require.True(t, ok)

	assert.True(t, page.Empty())
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, 0, page.TotalMatched)
	assert.Equal(t, "zzz", page.SearchTerm)
}

func TestReconcile_SearchOnlyCoversActiveFilter(t *testing.T) {
	hetero := testsupport.Records("het", 5, "0/1")
	homo := testsupport.Records("hom", 5, "1/1")
	store := storeWith(testsupport.Entry(patients.ShortRead, "k", hetero, homo))

	page, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterHomo, SearchTerm: "het", Page: 1})
	require.True(t, ok)
	assert.True(t, page.Empty())
}

func TestReconcile_SearchCorrectness(t *testing.T) {
	hetero := testsupport.Records("het", 90, "0/1")
	homo := testsupport.Records("hom", 40, "1/1")
	entry := testsupport.Entry(patients.ShortRead, "k", hetero, homo)
	store := storeWith(entry)
	all, _ := entry.Slice(patients.FilterAll)

	for _, term := range []string{"xx", "XY", "het-00", "1/1", "diagnosis 3", "  HOM-0040 ", "x"} {
		t.Run(term, func(t *testing.T) {
			norm := NormalizeSearch(term)
			want := 0
			for _, r := range all.Flatten() {
				if Matches(r, norm) {
					want++
				}
			}

			seen := 0
			for p := 1; ; p++ {
				page, ok := Reconcile(store, Request{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, SearchTerm: term, Page: p})
				require.True(t, ok)
				assert.Equal(t, want, page.TotalMatched)
				for _, r := range page.Patients {
					assert.True(t, Matches(r, norm), "record %s should match %q", r.PatientID, norm)
				}
				seen += len(page.Patients)
				if p >= page.TotalPages {
					break
				}
			}
			assert.Equal(t, want, seen)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	store := storeWith(testsupport.Entry(patients.ShortRead, "k", testsupport.Records("het", 75, "0/1"), testsupport.Records("hom", 3, "1/1")))

	for _, req := range []Request{
		{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterAll, Page: 2},
		{Technology: patients.ShortRead, Key: "k", Filter: patients.FilterHetero, SearchTerm: "xy", Page: 1},
	} {
		first, ok := Reconcile(store, req)
		require.True(t, ok)
		second, ok := Reconcile(store, req)
		require.True(t, ok)
		assert.Equal(t, first, second)
	}
}

func TestPagination_ServerPagesAddUp(t *testing.T) {
	entry := testsupport.Entry(patients.ShortRead, "k", testsupport.Records("het", 101, "0/1"), testsupport.Records("hom", 50, "1/1"))

	for _, f := range patients.Filters() {
		s, _ := entry.Slice(f)
		total := 0
		for i := 0; i < s.TotalPages; i++ {
			if i < s.TotalPages-1 {
				assert.Len(t, s.Pages[i], testsupport.ServerPageSize, "filter %s page %d", f, i+1)
			}
			total += len(s.Pages[i])
		}
		assert.Equal(t, s.TotalMatched, total, "filter %s", f)
	}
}

func TestMatches(t *testing.T) {
	rec := patients.Record{PatientID: "PT-77", Genotype: "0/1", Gender: "XY", Diagnosis: "Dilated Cardiomyopathy"}

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"pt-7", true},
		{"0/1", true},
		{"cardio", true},
		{"xy", true},
		{"x", false}, // gender is an exact match
		{"y", false},
		{"1/1", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.term), func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(rec, tt.term))
		})
	}

	assert.False(t, Matches(patients.Record{}, "xx"), "empty fields never match a non-empty term")
}

func TestPaginate(t *testing.T) {
	recs := testsupport.Records("p", 101, "0/1")
	pages := Paginate(recs, PageSize)

	require.Len(t, pages, 3)
	assert.Len(t, pages[2], 1)
	assert.Empty(t, Paginate(nil, PageSize))
	assert.Len(t, Paginate(recs, 0), 3, "non-positive size falls back to PageSize")
}

func TestNormalizeSearch(t *testing.T) {
	assert.Equal(t, "abc def", NormalizeSearch("  ABC Def\t"))
	assert.Equal(t, "", NormalizeSearch("   "))
}

func TestToggleFilter(t *testing.T) {
	f := ToggleFilter(patients.FilterAll, patients.FilterHetero)
	assert.Equal(t, patients.FilterHetero, f)

	f = ToggleFilter(f, patients.FilterHetero)
	assert.Equal(t, patients.FilterAll, f)

	assert.Equal(t, patients.FilterHomo, ToggleFilter(patients.FilterHetero, patients.FilterHomo))
	assert.Equal(t, patients.FilterAll, ToggleFilter(patients.FilterAll, patients.FilterAll))
}
