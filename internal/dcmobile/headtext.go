package dcmobile

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// minHeadTextSimilarity is the lowest Jaro-Winkler similarity at which a
// label is taken to name a head text option.
const minHeadTextSimilarity = 0.85

// resolveHeadText turns the caller's head text into the value the write form
// expects. Numeric ids pass through, labels are matched against the board's
// options, and an empty value keeps the form's current selection.
func resolveHeadText(value string, ex *Extraction) string {
	value = strings.TrimSpace(value)
	if value == "" {
		if current := ex.Fields.Get("headtext"); current != "" {
			return current
		}
		return "0"
	}
	if numericRegex.MatchString(value) {
		return value
	}

	var best Choice
	var bestSimilarity float64
	target := strings.ToLower(value)
	for _, choice := range ex.Choices["headtext"] {
		label := strings.ToLower(choice.Label)
		if label == target {
			return choice.Value
		}
		similarity := matchr.JaroWinkler(label, target, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = choice
		}
	}
	if bestSimilarity >= minHeadTextSimilarity {
		return best.Value
	}
	return value
}
