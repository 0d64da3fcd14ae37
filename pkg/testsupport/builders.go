package testsupport

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/goliatone/go-variant-patients/patients"
)

// ServerPageSize mirrors the page size the report server uses.
const ServerPageSize = 50

// Records builds n patients with the given genotype. IDs are prefix-0001,
// prefix-0002, ... so they sort in insertion order.
func Records(prefix string, n int, genotype string) []patients.Record {
	out := make([]patients.Record, n)
	for i := range out {
		gender := "XX"
		if i%2 == 1 {
			gender = "XY"
		}
		out[i] = patients.Record{
			PatientID: fmt.Sprintf("%s-%04d", prefix, i+1),
			Genotype:  genotype,
			Gender:    gender,
			Diagnosis: fmt.Sprintf("diagnosis %d", i%7),
		}
	}
	return out
}

// Paginate splits records into server pages of size.
func Paginate(records []patients.Record, size int) [][]patients.Record {
	pages := [][]patients.Record{}
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		pages = append(pages, records[start:end])
	}
	return pages
}

type slicePayload struct {
	Pages      [][]patients.Record `json:"pages"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

// PreloadBody renders the preload response the server would send for the
// given hetero and homo patients. "all" lists hetero before homo.
func PreloadBody(t testing.TB, variantKey string, hetero, homo []patients.Record) []byte {
	t.Helper()

	all := append(append([]patients.Record{}, hetero...), homo...)
	slice := func(recs []patients.Record) slicePayload {
		pages := Paginate(recs, ServerPageSize)
		return slicePayload{Pages: pages, Total: len(recs), TotalPages: len(pages)}
	}

	body, err := json.Marshal(map[string]interface{}{
		"variant_key":  variantKey,
		"homo_count":   len(homo),
		"hetero_count": len(hetero),
		"result": map[string]slicePayload{
			"all":    slice(all),
			"hetero": slice(hetero),
			"homo":   slice(homo),
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal preload body: %v", err)
	}
	return body
}

// Entry builds the decoded form of PreloadBody without going through HTTP.
func Entry(tech patients.Technology, key string, hetero, homo []patients.Record) patients.Entry {
	all := append(append([]patients.Record{}, hetero...), homo...)
	slice := func(recs []patients.Record) patients.Slice {
		pages := Paginate(recs, ServerPageSize)
		return patients.Slice{
			Pages:        pages,
			HomoCount:    len(homo),
			HeteroCount:  len(hetero),
			TotalPages:   len(pages),
			TotalMatched: len(recs),
		}
	}
	return patients.Entry{
		Technology: tech,
		Key:        key,
		VariantKey: key,
		Slices: map[patients.Filter]patients.Slice{
			patients.FilterAll:    slice(all),
			patients.FilterHetero: slice(hetero),
			patients.FilterHomo:   slice(homo),
		},
	}
}
