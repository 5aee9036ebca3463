package pipeline

import (
	"context"
	"fmt"

	"github.com/kayz/scout/internal/analysis"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/product"
)

// DetailProvider fetches the full listing record for one item.
type DetailProvider interface {
	Fetch(ctx context.Context, id, marketplace string) (*product.DetailRecord, error)
}

// ReviewProvider collects customer reviews for one item.
type ReviewProvider interface {
	Fetch(ctx context.Context, id, marketplace string) (product.ReviewSet, error)
}

// Analyzer turns a prepared prompt into raw analysis text.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Orchestrator runs the per-item acquisition stages against a fixed
// shortlist. Every stage returns its results aligned to the shortlist
// order regardless of completion order.
type Orchestrator struct {
	detail      DetailProvider
	reviews     ReviewProvider
	analyzer    Analyzer
	marketplace string

	detailMode   ExecMode
	reviewMode   ExecMode
	analysisMode ExecMode
}

func NewOrchestrator(detail DetailProvider, reviews ReviewProvider, analyzer Analyzer, marketplace string) *Orchestrator {
	return &Orchestrator{
		detail:      detail,
		reviews:     reviews,
		analyzer:    analyzer,
		marketplace: marketplace,
		// Detail and analysis calls are independent; review collection
		// stays serial because the scraping backend throttles hard when
		// runs overlap.
		detailMode:   Parallel,
		reviewMode:   Sequential,
		analysisMode: Parallel,
	}
}

// SetModes overrides the per-stage execution policy. The defaults suit the
// stock providers; a throttled detail endpoint can be driven sequentially
// without touching stage code.
func (o *Orchestrator) SetModes(detail, reviews, analysis ExecMode) {
	o.detailMode = detail
	o.reviewMode = reviews
	o.analysisMode = analysis
}

// CollectDetails fetches a detail record for every shortlist entry. On any
// failure the whole stage fails and no partial results are exposed.
func (o *Orchestrator) CollectDetails(ctx context.Context, shortlist []product.ShortlistEntry) ([]*product.DetailRecord, error) {
	slots := make([]*product.DetailRecord, len(shortlist))
	err := runBatch(ctx, o.detailMode, len(shortlist), func(ctx context.Context, i int) error {
		entry := shortlist[i]
		logger.Debug("fetching details for %s", entry.ID)
		rec, err := o.detail.Fetch(ctx, entry.ID, o.marketplace)
		if err != nil {
			return fmt.Errorf("details for %s: %w", entry.ID, err)
		}
		slots[i] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// CollectReviews gathers reviews for every shortlist entry in order. On
// failure the already-collected prefix is returned alongside the error so
// the caller can persist it before aborting the run.
func (o *Orchestrator) CollectReviews(ctx context.Context, shortlist []product.ShortlistEntry) ([]product.ReviewSet, error) {
	slots := make([]product.ReviewSet, len(shortlist))
	err := runBatch(ctx, o.reviewMode, len(shortlist), func(ctx context.Context, i int) error {
		entry := shortlist[i]
		logger.Info("collecting reviews for %s (%d/%d)", entry.ID, i+1, len(shortlist))
		set, err := o.reviews.Fetch(ctx, entry.ID, o.marketplace)
		if err != nil {
			return fmt.Errorf("reviews for %s: %w", entry.ID, err)
		}
		slots[i] = set
		return nil
	})
	if err != nil {
		return slots, err
	}
	return slots, nil
}

// AnalyzeAll produces one analysis per shortlist entry from its detail
// record and review set. details and sets must be aligned to the
// shortlist; nil slots are tolerated.
func (o *Orchestrator) AnalyzeAll(ctx context.Context, shortlist []product.ShortlistEntry, details []*product.DetailRecord, sets []product.ReviewSet) ([]product.Analysis, error) {
	slots := make([]product.Analysis, len(shortlist))
	err := runBatch(ctx, o.analysisMode, len(shortlist), func(ctx context.Context, i int) error {
		entry := shortlist[i]
		var detail *product.DetailRecord
		if i < len(details) {
			detail = details[i]
		}
		var set product.ReviewSet
		if i < len(sets) {
			set = sets[i]
		}

		title := analysisTitle(entry, detail)
		prompt := analysis.BuildPrompt(title, analysis.BuildDescription(detail), set)
		logger.Debug("analyzing %s with %s", entry.ID, o.analyzer.Name())
		text, err := o.analyzer.Analyze(ctx, prompt)
		if err != nil {
			return fmt.Errorf("analysis for %s: %w", entry.ID, err)
		}
		strengths, concerns := analysis.Parse(text)
		slots[i] = product.Analysis{
			ItemID:    entry.ID,
			ItemTitle: title,
			Text:      text,
			Strengths: strengths,
			Concerns:  concerns,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func analysisTitle(entry product.ShortlistEntry, detail *product.DetailRecord) string {
	if detail != nil && detail.Title != "" {
		return detail.Title
	}
	if entry.Title != "" {
		return entry.Title
	}
	return "Unknown Product"
}
