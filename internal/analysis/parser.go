package analysis

import (
	"regexp"
	"strings"
)

// Section markers the analysis provider is prompted to emit.
const (
	StrengthsMarker = "**Product Strengths:**"
	ConcernsMarker  = "**Product Concerns:**"
)

// enumCutset strips the leading numbering or bullet token off a list line.
const enumCutset = "0123456789.-) "

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// placeholderPhrases are filler lines a model emits when it found nothing.
// Matched as case-insensitive substrings.
var placeholderPhrases = []string{
	"no common concerns identified",
	"no concerns identified",
	"no specific concerns",
	"no major concerns",
	"no common strengths identified",
	"no strengths identified",
	"no specific strengths",
}

// Parse splits a free-text analysis response into ordered strengths and
// concerns lists. The text is expected to contain the concerns marker
// separating the two sections; without it both lists are empty. Within a
// section only lines starting with a digit or a dash count, enumeration
// tokens are stripped, **bold** becomes a <strong> marker, placeholder
// lines are dropped, and exact duplicates are kept once.
func Parse(text string) (strengths, concerns []string) {
	strengths = []string{}
	concerns = []string{}
	if text == "" {
		return strengths, concerns
	}

	sections := strings.SplitN(text, ConcernsMarker, 2)
	if len(sections) < 2 {
		return strengths, concerns
	}

	strengthsText := strings.TrimSpace(strings.ReplaceAll(sections[0], StrengthsMarker, ""))
	strengths = parseSection(strengthsText)
	concerns = parseSection(strings.TrimSpace(sections[1]))
	return strengths, concerns
}

func parseSection(text string) []string {
	items := []string{}
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !isListLine(line) {
			continue
		}
		cleaned := strings.TrimSpace(strings.TrimLeft(line, enumCutset))
		if cleaned == "" {
			continue
		}
		cleaned = boldPattern.ReplaceAllString(cleaned, "<strong>$1</strong>")
		if isPlaceholder(cleaned) {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		items = append(items, cleaned)
	}
	return items
}

func isListLine(line string) bool {
	c := line[0]
	return (c >= '0' && c <= '9') || c == '-'
}

func isPlaceholder(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
