package patients

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{
		"all":    FilterAll,
		" Homo ": FilterHomo,
		"HETERO": FilterHetero,
	} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFilter("both")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestParseTechnology(t *testing.T) {
	for in, want := range map[string]Technology{
		"SR":         ShortRead,
		"sr":         ShortRead,
		"short-read": ShortRead,
		"LR":         LongRead,
		" long-read": LongRead,
	} {
		got, err := ParseTechnology(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTechnology("nanopore")
	assert.ErrorIs(t, err, ErrUnknownTechnology)
}

func TestFilterForGenotype(t *testing.T) {
	assert.Equal(t, FilterHetero, FilterForGenotype("0/1"))
	assert.Equal(t, FilterHomo, FilterForGenotype(" 1/1"))
	assert.Equal(t, FilterAll, FilterForGenotype("./."))
	assert.Equal(t, FilterAll, FilterForGenotype(""))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "1_100_A_G", NormalizeKey(ShortRead, " 1_100_A_G "))
	assert.Equal(t, "chr17:123", NormalizeKey(LongRead, "17:123"))
	assert.Equal(t, "chr17:123", NormalizeKey(LongRead, "chr17:123"))
	assert.Equal(t, "", NormalizeKey(LongRead, "   "))
}

func TestSlice_PageAndFlatten(t *testing.T) {
	a := Record{PatientID: "a"}
	b := Record{PatientID: "b"}
	c := Record{PatientID: "c"}
	s := Slice{Pages: [][]Record{{a, b}, {c}}}

	assert.Equal(t, []Record{a, b}, s.Page(1))
	assert.Equal(t, []Record{c}, s.Page(2))
	assert.Nil(t, s.Page(0))
	assert.Nil(t, s.Page(3))
	assert.Equal(t, []Record{a, b, c}, s.Flatten())
	assert.Empty(t, Slice{}.Flatten())
}

func TestEntry_Complete(t *testing.T) {
	e := Entry{Slices: map[Filter]Slice{FilterAll: {}, FilterHetero: {}}}
	assert.False(t, e.Complete())

	e.Slices[FilterHomo] = Slice{}
	assert.True(t, e.Complete())

	_, ok := e.Slice(FilterHomo)
	assert.True(t, ok)
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Technology: ShortRead, Key: "k", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "preload SR k: connection refused", err.Error())
	assert.Equal(t, "Error loading patient data.", err.UserMessage())

	err = &NetworkError{Technology: LongRead, Key: "chr1", Status: 200, Message: "Variant not found"}
	assert.Equal(t, "preload LR chr1: Variant not found", err.Error())
	assert.Equal(t, "Error loading patient data: Variant not found", err.UserMessage())

	err = &NetworkError{Technology: ShortRead, Key: "k", Status: 503}
	assert.Equal(t, "preload SR k: unexpected status 503", err.Error())
}
