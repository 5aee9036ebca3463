package persist

import (
	"path/filepath"
	"testing"

	"github.com/kayz/scout/internal/product"
)

func TestWriteReadJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := []product.ShortlistEntry{
		{ID: "A", Title: "first", Price: "$10"},
		{ID: "B", Title: "second"},
	}

	if err := WriteJSON(dir, FileShortlist, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out []product.ShortlistEntry
	if err := ReadJSON(dir, FileShortlist, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 || out[0].ID != "A" || out[1].Title != "second" {
		t.Fatalf("round trip mismatch: %#v", out)
	}
	if out[0].Price != "$10" {
		t.Fatalf("price lost in round trip: %q", out[0].Price)
	}
}

func TestFlattenReviewsTagsEachRecord(t *testing.T) {
	shortlist := []product.ShortlistEntry{
		{ID: "A", Title: "Desk A"},
		{ID: "B", Title: "Desk B"},
	}
	sets := []product.ReviewSet{
		{{Rating: 5, Body: "solid"}, {Rating: 4, Body: "fine"}},
		{{Rating: 1, Body: "wobbly"}},
	}

	flat := FlattenReviews(shortlist, sets)
	if len(flat) != 3 {
		t.Fatalf("expected 3 flattened reviews, got %d", len(flat))
	}
	if flat[0].ItemID != "A" || flat[0].ItemTitle != "Desk A" {
		t.Fatalf("first review not tagged: %#v", flat[0])
	}
	if flat[2].ItemID != "B" || flat[2].Body != "wobbly" {
		t.Fatalf("last review not tagged: %#v", flat[2])
	}
}

func TestFlattenReviewsToleratesPartialSets(t *testing.T) {
	shortlist := []product.ShortlistEntry{{ID: "A", Title: "a"}, {ID: "B", Title: "b"}}
	sets := []product.ReviewSet{{{Rating: 3, Body: "ok"}}}

	flat := FlattenReviews(shortlist, sets)
	if len(flat) != 1 || flat[0].ItemID != "A" {
		t.Fatalf("unexpected flatten of partial sets: %#v", flat)
	}
}

func TestGroupReviewsJoinsByIdentifierNotPosition(t *testing.T) {
	shortlist := []product.ShortlistEntry{
		{ID: "A", Title: "Desk A"},
		{ID: "B", Title: "Desk B"},
	}
	// Persisted order deliberately scrambled relative to the shortlist.
	flat := []product.TaggedReview{
		{ItemID: "B", Rating: 1, Body: "wobbly"},
		{ItemID: "A", Rating: 5, Body: "solid"},
		{ItemID: "ghost", Rating: 3, Body: "orphan"},
		{ItemID: "B", Rating: 2, Body: "squeaks"},
	}

	sets := GroupReviews(shortlist, flat)
	if len(sets) != 2 {
		t.Fatalf("expected one set per entry, got %d", len(sets))
	}
	if len(sets[0]) != 1 || sets[0][0].Body != "solid" {
		t.Fatalf("unexpected set for A: %#v", sets[0])
	}
	if len(sets[1]) != 2 || sets[1][0].Body != "wobbly" || sets[1][1].Body != "squeaks" {
		t.Fatalf("unexpected set for B: %#v", sets[1])
	}
}

func TestStoreRecordsAndListsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	if err := s.RecordStart("run-1", "standing desk", "/tmp/run-1"); err != nil {
		t.Fatalf("record start: %v", err)
	}
	if err := s.RecordFinish("run-1", StatusCompleted, 10, 423, nil); err != nil {
		t.Fatalf("record finish: %v", err)
	}

	runs, err := s.ListRuns(5)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != StatusCompleted || runs[0].Products != 10 || runs[0].Reviews != 423 {
		t.Fatalf("unexpected run record: %#v", runs[0])
	}

	dir, err := s.LatestRunDir()
	if err != nil {
		t.Fatalf("latest run dir: %v", err)
	}
	if dir != "/tmp/run-1" {
		t.Fatalf("unexpected latest dir: %q", dir)
	}
}
