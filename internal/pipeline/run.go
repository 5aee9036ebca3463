package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"

	"github.com/kayz/scout/internal/analyze"
	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/detail"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/persist"
	"github.com/kayz/scout/internal/product"
	"github.com/kayz/scout/internal/report"
	"github.com/kayz/scout/internal/reviews"
	"github.com/kayz/scout/internal/search"
)

// Empty-result conditions. Both end a run early without failing it: there
// is nothing to research, which is an answer, not an error.
var (
	ErrNoCandidates = errors.New("search returned no products")
	ErrNoSurvivors  = errors.New("no products survived the filters")
)

// RunContext carries the state of one pipeline run: its identity, the run
// directory every artifact lands in, and the collections each stage adds.
type RunContext struct {
	ID  string
	Dir string

	Candidates []product.Candidate
	Shortlist  []product.ShortlistEntry
	Details    []*product.DetailRecord
	Reviews    []product.ReviewSet
	Analyses   []product.Analysis
}

// Pipeline wires the search engine, per-item providers and the run index
// into the full research flow.
type Pipeline struct {
	cfg    *config.Config
	engine search.Engine
	orch   *Orchestrator
	store  *persist.Store
}

// New builds a pipeline from config, constructing the real provider
// clients and opening the run index under the data directory.
func New(cfg *config.Config) (*Pipeline, error) {
	engine, err := search.NewRegistry().CreateEngine(search.EngineConfig{
		Name:    cfg.Search.Engine,
		Type:    cfg.Search.Engine,
		APIKey:  cfg.Search.APIKey,
		BaseURL: cfg.Search.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("search engine: %w", err)
	}

	detailClient, err := detail.NewClient(cfg.Detail.APIKey, cfg.Detail.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("detail client: %w", err)
	}

	reviewClient, err := reviews.NewClient(reviews.Options{
		APIToken:     cfg.Reviews.APIToken,
		Actor:        cfg.Reviews.Actor,
		BaseURL:      cfg.Reviews.BaseURL,
		MaxReviews:   cfg.Reviews.MaxReviews,
		MaxWait:      time.Duration(cfg.Reviews.MaxWaitSec) * time.Second,
		PollInterval: time.Duration(cfg.Reviews.PollInterSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("reviews client: %w", err)
	}

	analyzer, err := analyze.NewProvider(cfg.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analysis provider: %w", err)
	}

	store, err := persist.NewStore(filepath.Join(cfg.DataDir, "scout.db"))
	if err != nil {
		return nil, fmt.Errorf("run index: %w", err)
	}

	return &Pipeline{
		cfg:    cfg,
		engine: engine,
		orch:   NewOrchestrator(detailClient, reviewClient, analyzer, cfg.Marketplace),
		store:  store,
	}, nil
}

func (p *Pipeline) Close() {
	if p.store != nil {
		p.store.Close()
	}
}

// Run executes the full pipeline for the configured query. Every completed
// stage persists its artifact before the next stage starts, so a failed
// run leaves everything collected so far on disk.
func (p *Pipeline) Run(ctx context.Context) error {
	rc := &RunContext{ID: uuid.NewString()}

	dir, err := makeRunDir(p.cfg.DataDir, p.cfg.Query)
	if err != nil {
		return fmt.Errorf("run directory: %w", err)
	}
	rc.Dir = dir

	if err := logger.AddFileSink(filepath.Join(dir, persist.FileLog)); err != nil {
		logger.Warn("log file unavailable: %v", err)
	}
	defer logger.CloseFileSink()

	p.recordStart(rc)
	logger.Info("run %s started: %q on %s", rc.ID, p.cfg.Query, p.cfg.Marketplace)

	if err := p.searchStage(ctx, rc); err != nil {
		if errors.Is(err, ErrNoCandidates) {
			logger.Warn("no products found for %q on %s; nothing to research", p.cfg.Query, p.cfg.Marketplace)
			p.recordFinish(rc, persist.StatusEmpty, nil)
			return nil
		}
		return p.fail(rc, err)
	}

	if err := p.shortlistStage(rc); err != nil {
		if errors.Is(err, ErrNoSurvivors) {
			logger.Warn("no products survived the filters (min rating %s, min reviews %s); relax them and retry",
				floatOrAny(p.cfg.Filters.MinRating), intOrAny(p.cfg.Filters.MinReviews))
			p.recordFinish(rc, persist.StatusEmpty, nil)
			return nil
		}
		return p.fail(rc, err)
	}

	if err := p.detailStage(ctx, rc); err != nil {
		return p.fail(rc, err)
	}
	if err := p.reviewStage(ctx, rc); err != nil {
		return p.fail(rc, err)
	}
	if err := p.analysisStage(ctx, rc); err != nil {
		return p.fail(rc, err)
	}
	if err := p.reportStage(rc); err != nil {
		return p.fail(rc, err)
	}

	p.recordFinish(rc, persist.StatusCompleted, nil)
	logger.Info("run %s completed: %s", rc.ID, filepath.Join(rc.Dir, persist.FileReport))
	return nil
}

func (p *Pipeline) searchStage(ctx context.Context, rc *RunContext) error {
	logger.Info("searching %s for %q (%s, up to %d pages)",
		p.cfg.Marketplace, p.cfg.Query, p.engine.Type(), p.cfg.Pages)

	candidates, err := p.engine.Search(ctx, p.cfg.Query, search.Params{
		Marketplace:      p.cfg.Marketplace,
		Language:         p.cfg.Language,
		ShippingLocation: p.cfg.ShippingLocation,
		Pages:            p.cfg.Pages,
		Delay:            time.Duration(p.cfg.Delay * float64(time.Second)),
		Sort:             p.cfg.Sort,
		Prime:            p.cfg.Refinements.Prime,
		PriceBand:        p.cfg.Refinements.PriceBand,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	rc.Candidates = candidates
	logger.Info("search returned %d candidates", len(candidates))

	if err := persist.WriteJSON(rc.Dir, persist.FileSearchRaw, candidates); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	return nil
}

func (p *Pipeline) shortlistStage(rc *RunContext) error {
	rc.Shortlist = product.Select(rc.Candidates, product.FilterParams{
		MinRating:  p.cfg.Filters.MinRating,
		MinReviews: p.cfg.Filters.MinReviews,
		Limit:      p.cfg.Filters.Limit,
	})
	logger.Info("shortlisted %d of %d candidates", len(rc.Shortlist), len(rc.Candidates))

	if err := persist.WriteJSON(rc.Dir, persist.FileShortlist, rc.Shortlist); err != nil {
		return err
	}
	if len(rc.Shortlist) == 0 {
		return ErrNoSurvivors
	}
	return nil
}

func (p *Pipeline) detailStage(ctx context.Context, rc *RunContext) error {
	logger.Info("fetching details for %d products", len(rc.Shortlist))
	details, err := p.orch.CollectDetails(ctx, rc.Shortlist)
	if err != nil {
		return err
	}
	rc.Details = details
	return persist.WriteJSON(rc.Dir, persist.FileDetails, details)
}

func (p *Pipeline) reviewStage(ctx context.Context, rc *RunContext) error {
	logger.Info("collecting reviews for %d products", len(rc.Shortlist))
	sets, err := p.orch.CollectReviews(ctx, rc.Shortlist)
	if err != nil {
		// Keep whatever the completed prefix gathered before aborting.
		if werr := persist.WriteJSON(rc.Dir, persist.FileReviews,
			persist.FlattenReviews(rc.Shortlist, sets)); werr != nil {
			logger.Warn("could not save partial reviews: %v", werr)
		}
		return err
	}
	rc.Reviews = sets
	return persist.WriteJSON(rc.Dir, persist.FileReviews, persist.FlattenReviews(rc.Shortlist, sets))
}

func (p *Pipeline) analysisStage(ctx context.Context, rc *RunContext) error {
	logger.Info("analyzing %d products with %s", len(rc.Shortlist), p.orch.analyzer.Name())
	analyses, err := p.orch.AnalyzeAll(ctx, rc.Shortlist, rc.Details, rc.Reviews)
	if err != nil {
		return err
	}
	rc.Analyses = analyses
	return persist.WriteJSON(rc.Dir, persist.FileAnalysis, analyses)
}

func (p *Pipeline) reportStage(rc *RunContext) error {
	doc, err := report.Render(p.cfg, rc.Shortlist, rc.Details, rc.Reviews, rc.Analyses)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	path := filepath.Join(rc.Dir, persist.FileReport)
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	logger.Info("report written to %s", path)

	if p.cfg.OpenReport {
		if err := browser.OpenFile(path); err != nil {
			logger.Warn("could not open report in browser: %v", err)
		}
	}
	return nil
}

func (p *Pipeline) fail(rc *RunContext, err error) error {
	logger.Error("run %s failed: %v", rc.ID, err)
	p.recordFinish(rc, persist.StatusFailed, err)
	return err
}

func (p *Pipeline) recordStart(rc *RunContext) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordStart(rc.ID, p.cfg.Query, rc.Dir); err != nil {
		logger.Warn("run index: %v", err)
	}
}

func (p *Pipeline) recordFinish(rc *RunContext, status string, runErr error) {
	if p.store == nil {
		return
	}
	total := 0
	for _, set := range rc.Reviews {
		total += len(set)
	}
	if err := p.store.RecordFinish(rc.ID, status, len(rc.Shortlist), total, runErr); err != nil {
		logger.Warn("run index: %v", err)
	}
}

// makeRunDir creates a fresh timestamped directory for this run under the
// data directory, e.g. data/20260831-142501-wireless-earbuds.
func makeRunDir(dataDir, query string) (string, error) {
	name := time.Now().Format("20060102-150405")
	if slug := sanitizeQuery(query); slug != "" {
		name += "-" + slug
	}
	dir := filepath.Join(dataDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func sanitizeQuery(query string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return slug
}

func floatOrAny(v *float64) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("%.1f", *v)
}

func intOrAny(v *int) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *v)
}
