// Package persist writes stage artifacts and keeps the run index. Each
// pipeline stage dumps its full output collection to one pretty-printed
// JSON file in the run directory, so a failed run leaves everything the
// completed stages produced.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/product"
)

// Stage artifact file names inside a run directory.
const (
	FileSearchRaw = "search_raw.json"
	FileShortlist = "shortlist.json"
	FileDetails   = "details.json"
	FileReviews   = "reviews.json"
	FileAnalysis  = "analysis.json"
	FileReport    = "report.html"
	FileLog       = "pipeline.log"
)

// WriteJSON dumps a collection to <dir>/<name> as indented UTF-8 JSON.
func WriteJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	logger.Info("Saved %s", path)
	return nil
}

// ReadJSON loads a previously written artifact.
func ReadJSON(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// FlattenReviews turns the per-entry review sets into one collection, each
// record tagged with its originating shortlist identifier and title. Sets
// beyond the shortlist length are ignored; shorter input is allowed so a
// partially collected review stage can still be persisted.
func FlattenReviews(shortlist []product.ShortlistEntry, sets []product.ReviewSet) []product.TaggedReview {
	flat := []product.TaggedReview{}
	for i, set := range sets {
		if i >= len(shortlist) {
			break
		}
		entry := shortlist[i]
		for _, r := range set {
			flat = append(flat, product.TaggedReview{
				ItemID:    entry.ID,
				ItemTitle: entry.Title,
				Rating:    r.Rating,
				Title:     r.Title,
				Body:      r.Body,
				Date:      r.Date,
			})
		}
	}
	return flat
}

// GroupReviews re-associates flattened reviews to shortlist entries by
// identifier. This is a join, not a positional match, so re-ordered
// persisted files still land on the right entries.
func GroupReviews(shortlist []product.ShortlistEntry, flat []product.TaggedReview) []product.ReviewSet {
	sets := make([]product.ReviewSet, len(shortlist))
	index := make(map[string]int, len(shortlist))
	for i, entry := range shortlist {
		sets[i] = product.ReviewSet{}
		index[entry.ID] = i
	}
	for _, r := range flat {
		i, ok := index[r.ItemID]
		if !ok {
			continue
		}
		sets[i] = append(sets[i], product.Review{
			Rating: r.Rating,
			Title:  r.Title,
			Body:   r.Body,
			Date:   r.Date,
		})
	}
	return sets
}
