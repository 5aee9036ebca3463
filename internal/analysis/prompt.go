package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kayz/scout/internal/product"
)

// NoDescription is the literal placeholder used when the detail stage
// produced no feature text for an item.
const NoDescription = "No description available"

// BuildDescription joins the detail-stage feature bullets into a one-bullet-
// per-line block for the analysis prompt.
func BuildDescription(detail *product.DetailRecord) string {
	if detail == nil {
		return NoDescription
	}
	if len(detail.FeatureBullets) > 0 {
		lines := make([]string, len(detail.FeatureBullets))
		for i, bullet := range detail.FeatureBullets {
			lines[i] = "- " + bullet
		}
		return strings.Join(lines, "\n")
	}
	if detail.Description != "" {
		return detail.Description
	}
	return NoDescription
}

// BuildPrompt renders the review-analysis prompt. Reviews with an empty
// body are skipped; the rest appear as "<rating>: <body>" lines.
func BuildPrompt(title, description string, reviews product.ReviewSet) string {
	var reviewLines []string
	for _, r := range reviews {
		if r.Body == "" {
			continue
		}
		rating := strconv.FormatFloat(r.Rating, 'f', -1, 64)
		reviewLines = append(reviewLines, fmt.Sprintf("%s: %s", rating, r.Body))
	}

	return fmt.Sprintf(`You are evaluating the product %q with the following product description:
%s

Customers have reviewed this product with these reviews:
%s

Your goal is to provide a list of top product strengths and top product concerns, listed from most common to least common.

Requirements:
- Each list (strengths and concerns) should have a maximum of 10 points and a minimum of 3 points
- List items should be concise and specific
- Focus on the most commonly mentioned themes across reviews
- Base your analysis only on the reviews provided

Please provide your response in the following format:

%s
1. [strength]
2. [strength]
...

%s
1. [concern]
2. [concern]
...`, title, description, strings.Join(reviewLines, "\n"), StrengthsMarker, ConcernsMarker)
}
