package product

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Price is a free-form price as returned by search providers. Some providers
// send it as a string ("$59.99"), some as a bare number, some not at all.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*p = Price(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Price(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

// Candidate is one raw search result. Immutable once captured.
type Candidate struct {
	ID        string   `json:"asin"`
	Title     string   `json:"title"`
	Price     Price    `json:"price,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Reviews   *int     `json:"reviews,omitempty"`
	Link      string   `json:"link,omitempty"`
	LinkClean string   `json:"link_clean,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// ShortlistEntry is a candidate that survived filtering, reduced to the
// fields the rest of the pipeline needs. Identifiers are unique within a
// shortlist.
type ShortlistEntry struct {
	ID        string   `json:"asin"`
	Title     string   `json:"title"`
	Link      string   `json:"link,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Reviews   *int     `json:"reviews,omitempty"`
	Price     Price    `json:"price,omitempty"`
}

// DetailRecord is the enrichment payload for one shortlist entry.
type DetailRecord struct {
	ID             string          `json:"asin"`
	Title          string          `json:"title,omitempty"`
	Description    string          `json:"description,omitempty"`
	FeatureBullets []string        `json:"feature_bullets,omitempty"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

// Review is one normalized customer review.
type Review struct {
	Rating float64 `json:"rating"`
	Title  string  `json:"title,omitempty"`
	Body   string  `json:"body"`
	Date   string  `json:"date,omitempty"`
}

// ReviewSet is the ordered review collection for one shortlist entry.
type ReviewSet []Review

// TaggedReview is a review flattened for persistence, carrying its
// originating shortlist entry so an offline rebuild can re-associate it.
type TaggedReview struct {
	ItemID    string  `json:"asin"`
	ItemTitle string  `json:"product_title"`
	Rating    float64 `json:"rating"`
	Title     string  `json:"title,omitempty"`
	Body      string  `json:"body"`
	Date      string  `json:"date,omitempty"`
}

// Analysis is the qualitative output for one shortlist entry: the raw model
// response plus the parsed strengths and concerns lists.
type Analysis struct {
	ItemID    string   `json:"asin"`
	ItemTitle string   `json:"product_title"`
	Text      string   `json:"analysis"`
	Strengths []string `json:"strengths,omitempty"`
	Concerns  []string `json:"concerns,omitempty"`
}
