// Package view turns cached preload slices into the page a popup displays.
//
// Without a search term the server's own pages are served as-is. With one,
// every page of the active filter is flattened, filtered and re-paginated in
// memory at PageSize. Nothing here has side effects; rendering is the
// caller's job.
package view

import (
	"strings"

	"github.com/ahmetb/go-linq"
	"github.com/goliatone/go-variant-patients/patients"
)

// PageSize is the client-side page size used when a search is active.
const PageSize = 50

// Lookuper reads a cached slice without fetching.
type Lookuper interface {
	Lookup(tech patients.Technology, key string, filter patients.Filter) (patients.Slice, bool)
}

// Request is everything a reconciliation depends on.
type Request struct {
	Technology patients.Technology
	Key        string
	Filter     patients.Filter
	SearchTerm string
	Page       int
}

// Reconcile builds the page for req. It returns false when the variant has
// not been preloaded yet.
func Reconcile(store Lookuper, req Request) (patients.RenderedPage, bool) {
	slice, ok := store.Lookup(req.Technology, req.Key, req.Filter)
	if !ok {
		return patients.RenderedPage{}, false
	}

	// The summary always shows the variant-wide split, whatever the filter.
	counts := slice
	if all, ok := store.Lookup(req.Technology, req.Key, patients.FilterAll); ok {
		counts = all
	}

	term := NormalizeSearch(req.SearchTerm)
	page := patients.RenderedPage{
		HomoCount:   counts.HomoCount,
		HeteroCount: counts.HeteroCount,
		SearchTerm:  term,
		Technology:  req.Technology,
		Filter:      req.Filter,
	}

	if term == "" {
		page.Patients = nonNil(slice.Page(req.Page))
		page.CurrentPage = req.Page
		page.TotalPages = slice.TotalPages
		page.TotalMatched = slice.TotalMatched
		return page, true
	}

	filtered := Search(slice, term)
	pages := Paginate(filtered, PageSize)
	current := clamp(req.Page, 1, max(len(pages), 1))

	if current <= len(pages) {
		page.Patients = pages[current-1]
	} else {
		page.Patients = []patients.Record{}
	}
	page.CurrentPage = current
	page.TotalPages = len(pages)
	page.TotalMatched = len(filtered)
	return page, true
}

// Search flattens every page of slice and keeps the records matching term,
// in server order.
func Search(slice patients.Slice, term string) []patients.Record {
	var out []patients.Record
	linq.From(slice.Pages).
		SelectMany(func(page interface{}) linq.Query {
			return linq.From(page)
		}).
		Where(func(rec interface{}) bool {
			return Matches(rec.(patients.Record), term)
		}).
		ToSlice(&out)
	if out == nil {
		out = []patients.Record{}
	}
	return out
}

// Matches reports whether rec satisfies a normalized search term: a substring
// of the patient ID, genotype or diagnosis, or exactly the gender.
func Matches(rec patients.Record, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.PatientID), term) ||
		strings.Contains(strings.ToLower(rec.Genotype), term) ||
		strings.Contains(strings.ToLower(rec.Diagnosis), term) ||
		strings.ToLower(rec.Gender) == term
}

// Paginate splits records into pages of size, keeping order.
func Paginate(records []patients.Record, size int) [][]patients.Record {
	if size <= 0 {
		size = PageSize
	}
	pages := make([][]patients.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		pages = append(pages, records[start:end])
	}
	return pages
}

// NormalizeSearch trims and lower-cases raw input.
func NormalizeSearch(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ToggleFilter returns the filter after clicking clicked while current is
// active: clicking the active filter falls back to FilterAll.
func ToggleFilter(current, clicked patients.Filter) patients.Filter {
	if clicked == current {
		return patients.FilterAll
	}
	return clicked
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func nonNil(recs []patients.Record) []patients.Record {
	if recs == nil {
		return []patients.Record{}
	}
	return recs
}
