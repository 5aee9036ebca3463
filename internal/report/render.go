// Package report renders the final HTML document from the four aligned
// stage collections. Rendering is pure: no I/O beyond the returned bytes.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/product"
)

type pageData struct {
	Query        string
	Marketplace  string
	ShippingType string
	PriceRange   string
	MinRating    string
	MinReviews   string
	GeneratedAt  string
	Cards        []card
}

type card struct {
	ID        string
	Title     string
	Link      string
	Thumbnail string
	Rating    string
	Reviews   string
	Price     string
	Strengths []template.HTML
	Concerns  []template.HTML
}

var page = template.Must(template.New("report").Parse(htmlTemplate))

// Render produces the report document. The four collections are aligned by
// shortlist position; analyses may be shorter than the shortlist when a
// rebuild is working from partial artifacts.
func Render(cfg *config.Config, shortlist []product.ShortlistEntry,
	details []*product.DetailRecord, sets []product.ReviewSet,
	analyses []product.Analysis) ([]byte, error) {

	data := pageData{
		Query:        cfg.Query,
		Marketplace:  cfg.Marketplace,
		ShippingType: shippingLabel(cfg.Refinements.Prime),
		PriceRange:   priceBandLabel(cfg.Refinements.PriceBand),
		MinRating:    thresholdLabel(cfg.Filters.MinRating),
		MinReviews:   intThresholdLabel(cfg.Filters.MinReviews),
		GeneratedAt:  time.Now().Format("2006-01-02 15:04"),
	}

	for i, entry := range shortlist {
		c := card{
			ID:        entry.ID,
			Title:     entry.Title,
			Link:      link(entry),
			Thumbnail: entry.Thumbnail,
			Rating:    ratingLabel(entry.Rating),
			Reviews:   reviewCountLabel(entry.Reviews),
			Price:     priceLabel(entry.Price),
		}
		if c.Title == "" && i < len(details) && details[i] != nil {
			c.Title = details[i].Title
		}
		if i < len(analyses) {
			c.Strengths = asHTML(analyses[i].Strengths)
			c.Concerns = asHTML(analyses[i].Concerns)
		}
		data.Cards = append(data.Cards, c)
	}

	// the review sets only feed the analysis; the report shows counts off
	// the shortlist metadata, so sets is accepted for contract symmetry
	_ = sets

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// asHTML trusts the parsed list items, which contain only text plus the
// <strong> markers the parser itself inserted.
func asHTML(items []string) []template.HTML {
	out := make([]template.HTML, len(items))
	for i, s := range items {
		out[i] = template.HTML(s)
	}
	return out
}

func link(e product.ShortlistEntry) string {
	if e.Link != "" {
		return e.Link
	}
	return "#"
}

func ratingLabel(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', -1, 64) + "/5"
}

func reviewCountLabel(n *int) string {
	if n == nil {
		return "0"
	}
	return groupThousands(*n)
}

func priceLabel(p product.Price) string {
	if p == "" {
		return "N/A"
	}
	return string(p)
}

func thresholdLabel(v *float64) string {
	if v == nil {
		return "Any"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intThresholdLabel(v *int) string {
	if v == nil {
		return "Any"
	}
	return strconv.Itoa(*v)
}

// shippingLabel maps the known prime refinement codes to readable names.
func shippingLabel(code string) string {
	switch code {
	case "":
		return "Any"
	case "6845356051":
		return "Prime Domestic"
	case "6845357051":
		return "Prime International"
	}
	return fmt.Sprintf("Prime (%s)", code)
}

// priceBandLabel converts a "min-max" cents band into a dollar range.
func priceBandLabel(band string) string {
	if band == "" {
		return "Any"
	}
	parts := strings.SplitN(band, "-", 2)
	if len(parts) != 2 {
		return band
	}
	min, err1 := strconv.Atoi(parts[0])
	max, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return band
	}
	return fmt.Sprintf("$%.2f - $%.2f", float64(min)/100, float64(max)/100)
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
