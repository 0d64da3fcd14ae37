package patients

import (
	"fmt"
	"strings"
)

// Filter is the zygosity partition a popup shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterHetero Filter = "hetero"
	FilterHomo   Filter = "homo"
)

// Genotype calls the server sorts into the hetero and homo partitions.
const (
	GenotypeHetero = "0/1"
	GenotypeHomo   = "1/1"
)

// Filters lists every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterHetero, FilterHomo}
}

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterHetero, FilterHomo:
		return true
	}
	return false
}

// ParseFilter accepts a filter name in any case.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return f, nil
}

// FilterForGenotype maps a genotype call to its zygosity filter. Calls
// outside the two partitions only belong to FilterAll.
func FilterForGenotype(genotype string) Filter {
	switch strings.TrimSpace(genotype) {
	case GenotypeHetero:
		return FilterHetero
	case GenotypeHomo:
		return FilterHomo
	}
	return FilterAll
}

// Technology is the sequencing source a variant was called from.
type Technology string

const (
	ShortRead Technology = "SR"
	LongRead  Technology = "LR"
)

// Valid reports whether t is a known technology.
func (t Technology) Valid() bool {
	return t == ShortRead || t == LongRead
}

// ParseTechnology accepts SR/LR in any case and the short-read/long-read
// spellings.
func ParseTechnology(s string) (Technology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sr", "short-read", "shortread":
		return ShortRead, nil
	case "lr", "long-read", "longread":
		return LongRead, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTechnology, s)
}
