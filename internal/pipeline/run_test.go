package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/persist"
	"github.com/kayz/scout/internal/product"
	"github.com/kayz/scout/internal/search"
)

type stubEngine struct {
	results []product.Candidate
	err     error
}

func (e *stubEngine) Name() string { return "stub" }
func (e *stubEngine) Type() string { return "stub" }

func (e *stubEngine) Search(ctx context.Context, query string, params search.Params) ([]product.Candidate, error) {
	return e.results, e.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Query = "wireless earbuds"
	cfg.DataDir = t.TempDir()
	cfg.OpenReport = false
	return cfg
}

func testPipeline(t *testing.T, cfg *config.Config, engine search.Engine, detail DetailProvider, rev ReviewProvider, a Analyzer) *Pipeline {
	t.Helper()
	store, err := persist.NewStore(filepath.Join(cfg.DataDir, "scout.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &Pipeline{
		cfg:    cfg,
		engine: engine,
		orch:   NewOrchestrator(detail, rev, a, cfg.Marketplace),
		store:  store,
	}
}

func rating(v float64) *float64 { return &v }
func count(v int) *int          { return &v }

func candidates() []product.Candidate {
	return []product.Candidate{
		{ID: "A1", Title: "Alpha Buds", Rating: rating(4.6), Reviews: count(900), Price: "$39.99"},
		{ID: "B2", Title: "Beta Buds", Rating: rating(4.4), Reviews: count(1500), Price: "$29.99"},
	}
}

func runDir(t *testing.T, dataDir string) string {
	t.Helper()
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		t.Fatalf("read data dir: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(dataDir, e.Name())
		}
	}
	t.Fatal("no run directory created")
	return ""
}

func TestRunProducesAllArtifacts(t *testing.T) {
	cfg := testConfig(t)
	p := testPipeline(t, cfg, &stubEngine{results: candidates()}, &stubDetail{}, &stubReviews{}, &stubAnalyzer{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dir := runDir(t, cfg.DataDir)
	for _, name := range []string{
		persist.FileSearchRaw, persist.FileShortlist, persist.FileDetails,
		persist.FileReviews, persist.FileAnalysis, persist.FileReport, persist.FileLog,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	var shortlist []product.ShortlistEntry
	if err := persist.ReadJSON(dir, persist.FileShortlist, &shortlist); err != nil {
		t.Fatalf("read shortlist: %v", err)
	}
	// Alpha ranks first on rating despite Beta's higher review count.
	if len(shortlist) != 2 || shortlist[0].ID != "A1" || shortlist[1].ID != "B2" {
		t.Errorf("unexpected shortlist: %+v", shortlist)
	}

	doc, err := os.ReadFile(filepath.Join(dir, persist.FileReport))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(doc), "Alpha Buds") {
		t.Error("report should name the shortlisted products")
	}

	runs, err := p.store.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != persist.StatusCompleted {
		t.Errorf("expected one completed run, got %+v", runs)
	}
	if runs[0].Products != 2 {
		t.Errorf("expected 2 products recorded, got %d", runs[0].Products)
	}
}

func TestRunEmptySearchEndsCleanly(t *testing.T) {
	cfg := testConfig(t)
	p := testPipeline(t, cfg, &stubEngine{}, &stubDetail{}, &stubReviews{}, &stubAnalyzer{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("empty search must not fail the run: %v", err)
	}

	dir := runDir(t, cfg.DataDir)
	if _, err := os.Stat(filepath.Join(dir, persist.FileSearchRaw)); err != nil {
		t.Errorf("raw search artifact should still be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, persist.FileReport)); !os.IsNotExist(err) {
		t.Error("no report should be generated for an empty run")
	}

	runs, err := p.store.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != persist.StatusEmpty {
		t.Errorf("expected an empty run record, got %+v", runs)
	}
}

func TestRunEmptyShortlistEndsCleanly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filters.MinRating = rating(4.9) // nothing qualifies
	p := testPipeline(t, cfg, &stubEngine{results: candidates()}, &stubDetail{}, &stubReviews{}, &stubAnalyzer{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("empty shortlist must not fail the run: %v", err)
	}

	dir := runDir(t, cfg.DataDir)
	var shortlist []product.ShortlistEntry
	if err := persist.ReadJSON(dir, persist.FileShortlist, &shortlist); err != nil {
		t.Fatalf("shortlist artifact should still be written: %v", err)
	}
	if len(shortlist) != 0 {
		t.Errorf("expected an empty shortlist, got %+v", shortlist)
	}

	runs, err := p.store.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != persist.StatusEmpty {
		t.Errorf("expected an empty run record, got %+v", runs)
	}
}

func TestRunSearchErrorFailsRun(t *testing.T) {
	cfg := testConfig(t)
	p := testPipeline(t, cfg, &stubEngine{err: errors.New("429 from provider")}, &stubDetail{}, &stubReviews{}, &stubAnalyzer{})

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected the run to fail")
	}
	runs, err := p.store.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != persist.StatusFailed {
		t.Errorf("expected a failed run record, got %+v", runs)
	}
}

func TestRunReviewFailureKeepsPartialArtifact(t *testing.T) {
	cfg := testConfig(t)
	rev := &stubReviews{fail: map[string]error{"B2": errors.New("actor timed out")}}
	p := testPipeline(t, cfg, &stubEngine{results: candidates()}, &stubDetail{}, rev, &stubAnalyzer{})

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected the run to fail")
	}

	dir := runDir(t, cfg.DataDir)
	var flat []product.TaggedReview
	if err := persist.ReadJSON(dir, persist.FileReviews, &flat); err != nil {
		t.Fatalf("partial reviews should be persisted: %v", err)
	}
	if len(flat) != 1 || flat[0].ItemID != "A1" {
		t.Errorf("expected the completed prefix only, got %+v", flat)
	}
	if _, err := os.Stat(filepath.Join(dir, persist.FileAnalysis)); !os.IsNotExist(err) {
		t.Error("analysis must not run after the review stage fails")
	}
}

func TestRebuildRegeneratesReportFromArtifacts(t *testing.T) {
	cfg := testConfig(t)
	p := testPipeline(t, cfg, &stubEngine{results: candidates()}, &stubDetail{}, &stubReviews{}, &stubAnalyzer{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dir := runDir(t, cfg.DataDir)

	// Scramble the persisted review order; rebuild joins by identifier.
	var flat []product.TaggedReview
	if err := persist.ReadJSON(dir, persist.FileReviews, &flat); err != nil {
		t.Fatalf("read reviews: %v", err)
	}
	for i, j := 0, len(flat)-1; i < j; i, j = i+1, j-1 {
		flat[i], flat[j] = flat[j], flat[i]
	}
	if err := persist.WriteJSON(dir, persist.FileReviews, flat); err != nil {
		t.Fatalf("rewrite reviews: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, persist.FileReport)); err != nil {
		t.Fatalf("remove report: %v", err)
	}

	if err := Rebuild(cfg, dir); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	doc, err := os.ReadFile(filepath.Join(dir, persist.FileReport))
	if err != nil {
		t.Fatalf("rebuilt report missing: %v", err)
	}
	body := string(doc)
	alpha := strings.Index(body, "Alpha Buds")
	beta := strings.Index(body, "Beta Buds")
	if alpha < 0 || beta < 0 || alpha > beta {
		t.Errorf("rebuilt report should keep shortlist order (A1 at %d, B2 at %d)", alpha, beta)
	}
}

func TestRebuildWithoutShortlistFails(t *testing.T) {
	cfg := testConfig(t)
	if err := Rebuild(cfg, t.TempDir()); err == nil {
		t.Fatal("expected an error for a directory with no shortlist")
	}
}

func TestSanitizeQuery(t *testing.T) {
	cases := []struct{ in, want string }{
		{"wireless earbuds", "wireless-earbuds"},
		{"  USB-C  hub!! ", "usb-c-hub"},
		{"日本語 kettle", "kettle"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeQuery(tc.in); got != tc.want {
			t.Errorf("sanitizeQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
