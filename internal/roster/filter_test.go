package roster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Niko Hernández":    "niko hernandez",
		"  ZOË   O'Brien ":  "zoe o brien",
		"Jean-Luc Picard":   "jean luc picard",
		"STRASSE":           "strasse",
		"":                  "",
		"...":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestMatchesShortlist(t *testing.T) {
	shortlist := []string{"Niko Hernandez", "ada", "  "}

	assert.True(t, MatchesShortlist("Niko Hernández", shortlist))
	assert.True(t, MatchesShortlist("Ada Lovelace", shortlist), "shortlist entry contained in name")
	assert.True(t, MatchesShortlist("Niko", shortlist), "name contained in shortlist entry")
	assert.False(t, MatchesShortlist("Grace Hopper", shortlist))
	assert.False(t, MatchesShortlist("", shortlist))
	assert.False(t, MatchesShortlist("Ada", nil))
}

func TestFilter_Apply(t *testing.T) {
	catalog := []Profile{
		{ID: "a", Name: "Ada Lovelace"},
		{ID: "b", Name: "Grace Hopper"},
		{ID: "c", Name: "Alan Turing", EndDate: "2024-01-01"},
		{ID: "d", Name: "Barbara Liskov"},
		{ID: "e", Name: "Edsger Dijkstra", EndDate: "   "},
	}

	f := NewFilter([]string{"d", ""}, []string{"grace", "Edsger"})

	if diff := cmp.Diff([]string{"a", "b", "e"}, IDs(f.Apply(catalog, false))); diff != "" {
		t.Fatalf("full roster mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "e"}, IDs(f.Apply(catalog, true))); diff != "" {
		t.Fatalf("shortlist roster mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_EmptyShortlistYieldsEmptyRoster(t *testing.T) {
	f := NewFilter(nil, nil)
	assert.Empty(t, f.Apply([]Profile{{ID: "a", Name: "Ada"}}, true))
}
