package product

import (
	"reflect"
	"testing"
)

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func ids(entries []ShortlistEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSelectDropsDuplicateKeepingFirstAndRanksByPrice(t *testing.T) {
	candidates := []Candidate{
		{ID: "A", Rating: f64(4.5), Reviews: iptr(200), Price: "$20.00"},
		{ID: "B", Rating: f64(4.5), Reviews: iptr(200), Price: "$15.00"},
		{ID: "A", Rating: f64(1), Reviews: iptr(1), Price: "$1"},
	}

	got := Select(candidates, FilterParams{Limit: 10})
	if want := []string{"B", "A"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	// A keeps its first-occurrence fields, not the duplicate's
	if got[1].Price != "$20.00" {
		t.Fatalf("expected first occurrence of A kept, got price %q", got[1].Price)
	}
}

func TestSelectOrdersByRatingThenReviews(t *testing.T) {
	candidates := []Candidate{
		{ID: "low", Rating: f64(3.9), Reviews: iptr(5000), Price: "$5"},
		{ID: "top", Rating: f64(4.8), Reviews: iptr(10), Price: "$90"},
		{ID: "mid", Rating: f64(4.8), Reviews: iptr(5), Price: "$2"},
	}

	got := Select(candidates, FilterParams{Limit: 10})
	if want := []string{"top", "mid", "low"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestSelectThresholdsExcludeMissingFields(t *testing.T) {
	candidates := []Candidate{
		{ID: "rated", Rating: f64(4.2), Reviews: iptr(80)},
		{ID: "unrated", Reviews: iptr(500)},
		{ID: "fewreviews", Rating: f64(4.9), Reviews: iptr(3)},
		{ID: "noreviews", Rating: f64(4.9)},
	}

	got := Select(candidates, FilterParams{
		MinRating:  f64(4.0),
		MinReviews: iptr(10),
		Limit:      10,
	})
	if want := []string{"rated"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestSelectNoThresholdsKeepsUnverifiableCandidatesLast(t *testing.T) {
	candidates := []Candidate{
		{ID: "bare"},
		{ID: "rated", Rating: f64(2.0), Reviews: iptr(1), Price: "$3"},
	}

	got := Select(candidates, FilterParams{Limit: 10})
	if want := []string{"rated", "bare"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestSelectTruncatesToLimit(t *testing.T) {
	var candidates []Candidate
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, Candidate{ID: id, Rating: f64(4), Reviews: iptr(10)})
	}

	got := Select(candidates, FilterParams{Limit: 3})
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
}

func TestSelectEmptyInputYieldsEmptyOutput(t *testing.T) {
	if got := Select(nil, FilterParams{Limit: 10}); len(got) != 0 {
		t.Fatalf("expected empty shortlist, got %d entries", len(got))
	}
}

func TestSelectIsIdempotentOnItsOwnOutput(t *testing.T) {
	candidates := []Candidate{
		{ID: "x", Rating: f64(4.7), Reviews: iptr(90), Price: "$12.50"},
		{ID: "y", Rating: f64(4.7), Reviews: iptr(90), Price: "$11.00"},
		{ID: "z", Rating: f64(3.1), Reviews: iptr(4), Price: "bad price"},
	}

	first := Select(candidates, FilterParams{Limit: 10})

	again := make([]Candidate, len(first))
	for i, e := range first {
		again[i] = Candidate{ID: e.ID, Title: e.Title, Rating: e.Rating, Reviews: e.Reviews, Price: e.Price}
	}
	second := Select(again, FilterParams{Limit: 10})

	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("re-ranking changed order: %v vs %v", ids(first), ids(second))
	}
}

func TestSelectTieOnAllKeysIsStable(t *testing.T) {
	candidates := []Candidate{
		{ID: "first", Rating: f64(4), Reviews: iptr(10), Price: "$5"},
		{ID: "second", Rating: f64(4), Reviews: iptr(10), Price: "$5"},
	}

	got := Select(candidates, FilterParams{Limit: 10})
	if want := []string{"first", "second"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("tie broke input order: %v", ids(got))
	}
}

func TestParsePriceDegradesToSentinel(t *testing.T) {
	cases := []struct {
		in   Price
		want float64
	}{
		{"$20.00", 20},
		{"AU$1,059.99", 1059.99},
		{"15.5", 15.5},
		{"", priceSentinel},
		{"call for price", priceSentinel},
		{"10.99.", priceSentinel},
	}
	for _, c := range cases {
		if got := parsePrice(c.in); got != c.want {
			t.Fatalf("parsePrice(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
