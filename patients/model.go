package patients

import (
	"strings"
	"time"
)

// Record is one patient carrying a variant. Fields the server sends as null
// decode to the empty string.
type Record struct {
	PatientID string `json:"patient_id" mapstructure:"patient_id"`
	Genotype  string `json:"genotype" mapstructure:"genotype"`
	Gender    string `json:"gender" mapstructure:"gender"`
	Diagnosis string `json:"diagnosis" mapstructure:"diagnosis"`
}

// Slice is the server-paginated result for one filter of one variant.
// TotalMatched and TotalPages ignore any client-side search.
type Slice struct {
	Pages        [][]Record `json:"pages"`
	HomoCount    int        `json:"homo_count"`
	HeteroCount  int        `json:"hetero_count"`
	TotalPages   int        `json:"total_pages"`
	TotalMatched int        `json:"total"`
}

// Page returns the 1-based server page n, or nil when n is out of range.
func (s Slice) Page(n int) []Record {
	if n < 1 || n > len(s.Pages) {
		return nil
	}
	return s.Pages[n-1]
}

// Flatten concatenates every page in server order.
func (s Slice) Flatten() []Record {
	size := 0
	for _, p := range s.Pages {
		size += len(p)
	}
	out := make([]Record, 0, size)
	for _, p := range s.Pages {
		out = append(out, p...)
	}
	return out
}

// Entry is everything one preload returns for a variant. It is the unit the
// cache installs, so the three slices are always present together.
type Entry struct {
	Technology Technology
	Key        string
	// VariantKey is the canonical key echoed by the server, when it sends one.
	VariantKey string
	Slices     map[Filter]Slice
	LoadedAt   time.Time
}

// Slice returns the slice for filter f.
func (e Entry) Slice(f Filter) (Slice, bool) {
	s, ok := e.Slices[f]
	return s, ok
}

// Complete reports whether all three filters are present.
func (e Entry) Complete() bool {
	for _, f := range Filters() {
		if _, ok := e.Slices[f]; !ok {
			return false
		}
	}
	return true
}

// RenderedPage is what the popup shows after a reconciliation.
type RenderedPage struct {
	Patients     []Record
	HomoCount    int
	HeteroCount  int
	CurrentPage  int
	TotalPages   int
	TotalMatched int
	SearchTerm   string
	Technology   Technology
	Filter       Filter
}

// Empty reports the "no patients found" state.
func (p RenderedPage) Empty() bool {
	return len(p.Patients) == 0
}

// NormalizeKey trims the key and, for long-read variants, adds the "chr"
// prefix the long-read store always carries.
func NormalizeKey(tech Technology, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if tech == LongRead && !strings.HasPrefix(key, "chr") {
		return "chr" + key
	}
	return key
}
