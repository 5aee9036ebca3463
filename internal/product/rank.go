package product

import (
	"sort"
	"strconv"
	"strings"
)

// priceSentinel ranks items with a missing or unparsable price last.
const priceSentinel = 999999

// FilterParams are the client-side shortlist filters. A nil threshold is
// not applied; a set threshold also rejects candidates whose corresponding
// field is absent, since they cannot be verified to pass.
type FilterParams struct {
	MinRating  *float64
	MinReviews *int
	Limit      int
}

// Select reduces raw candidates to the ranked shortlist: deduplicate by
// identifier keeping the first occurrence, filter by thresholds, sort by
// rating desc / review count desc / numeric price asc, truncate to the
// limit. Pure and total: empty input yields empty output.
func Select(candidates []Candidate, p FilterParams) []ShortlistEntry {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}

	seen := make(map[string]struct{}, len(candidates))
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if !passes(c, p) {
			continue
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ri, rj := ratingOf(kept[i]), ratingOf(kept[j])
		if ri != rj {
			return ri > rj
		}
		ci, cj := reviewsOf(kept[i]), reviewsOf(kept[j])
		if ci != cj {
			return ci > cj
		}
		return parsePrice(kept[i].Price) < parsePrice(kept[j].Price)
	})

	if len(kept) > limit {
		kept = kept[:limit]
	}

	entries := make([]ShortlistEntry, len(kept))
	for i, c := range kept {
		entries[i] = ShortlistEntry{
			ID:        c.ID,
			Title:     c.Title,
			Link:      c.Link,
			Thumbnail: c.Thumbnail,
			Rating:    c.Rating,
			Reviews:   c.Reviews,
			Price:     c.Price,
		}
	}
	return entries
}

func passes(c Candidate, p FilterParams) bool {
	if p.MinRating != nil && (c.Rating == nil || *c.Rating < *p.MinRating) {
		return false
	}
	if p.MinReviews != nil && (c.Reviews == nil || *c.Reviews < *p.MinReviews) {
		return false
	}
	return true
}

func ratingOf(c Candidate) float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

func reviewsOf(c Candidate) int {
	if c.Reviews == nil {
		return 0
	}
	return *c.Reviews
}

// parsePrice extracts a numeric value from a free-form price string by
// dropping everything but digits and decimal points. Unparsable prices
// degrade to the sentinel instead of erroring.
func parsePrice(p Price) float64 {
	var b strings.Builder
	for _, r := range string(p) {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return priceSentinel
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return priceSentinel
	}
	return v
}
