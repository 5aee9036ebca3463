package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kayz/scout/internal/analysis"
	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/persist"
	"github.com/kayz/scout/internal/product"
	"github.com/kayz/scout/internal/report"
)

// Rebuild regenerates report.html from the artifacts saved in a previous
// run directory, without any network calls. The shortlist is required;
// details, reviews and analyses are loaded when present and re-associated
// with shortlist entries by product identifier, so artifact files may be
// partial or reordered.
func Rebuild(cfg *config.Config, dir string) error {
	var shortlist []product.ShortlistEntry
	if err := persist.ReadJSON(dir, persist.FileShortlist, &shortlist); err != nil {
		return fmt.Errorf("rebuild: %s: %w", persist.FileShortlist, err)
	}
	if len(shortlist) == 0 {
		return fmt.Errorf("rebuild: %s is empty, nothing to report", persist.FileShortlist)
	}

	details := loadDetails(dir, shortlist)
	sets := loadReviews(dir, shortlist)
	analyses := loadAnalyses(dir, shortlist)

	doc, err := report.Render(cfg, shortlist, details, sets, analyses)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	path := filepath.Join(dir, persist.FileReport)
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	logger.Info("report rebuilt at %s", path)
	return nil
}

func loadDetails(dir string, shortlist []product.ShortlistEntry) []*product.DetailRecord {
	var saved []*product.DetailRecord
	if err := persist.ReadJSON(dir, persist.FileDetails, &saved); err != nil {
		logger.Warn("rebuild: no detail records (%v), falling back to shortlist data", err)
		return nil
	}

	byID := make(map[string]*product.DetailRecord, len(saved))
	for _, rec := range saved {
		if rec != nil && rec.ID != "" {
			byID[rec.ID] = rec
		}
	}
	aligned := make([]*product.DetailRecord, len(shortlist))
	for i, entry := range shortlist {
		aligned[i] = byID[entry.ID]
	}
	return aligned
}

func loadReviews(dir string, shortlist []product.ShortlistEntry) []product.ReviewSet {
	var flat []product.TaggedReview
	if err := persist.ReadJSON(dir, persist.FileReviews, &flat); err != nil {
		logger.Warn("rebuild: no reviews (%v)", err)
		return nil
	}
	return persist.GroupReviews(shortlist, flat)
}

func loadAnalyses(dir string, shortlist []product.ShortlistEntry) []product.Analysis {
	var saved []product.Analysis
	if err := persist.ReadJSON(dir, persist.FileAnalysis, &saved); err != nil {
		logger.Warn("rebuild: no analyses (%v)", err)
		return nil
	}

	byID := make(map[string]product.Analysis, len(saved))
	for _, a := range saved {
		if a.ItemID != "" {
			byID[a.ItemID] = a
		}
	}
	aligned := make([]product.Analysis, len(shortlist))
	for i, entry := range shortlist {
		a := byID[entry.ID]
		// Older artifacts carry only the raw text; re-derive the lists.
		if a.Text != "" && len(a.Strengths) == 0 && len(a.Concerns) == 0 {
			a.Strengths, a.Concerns = analysis.Parse(a.Text)
		}
		aligned[i] = a
	}
	return aligned
}
