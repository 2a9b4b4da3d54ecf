// Package complexity scores a work item and maps the score onto a
// complexity tier. Classification is a pure function: it never errors and
// identical items always land on the same tier.
package complexity

import (
	"strings"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

// MaxScore is the upper bound of the additive complexity score.
const MaxScore = 9

// requiredFields are the top-level work-item fields that count toward data
// completeness.
var requiredFields = []func(analysis.WorkItem) bool{
	func(item analysis.WorkItem) bool { return item.Title != "" },
	func(item analysis.WorkItem) bool { return len(item.Rows) > 0 },
	func(item analysis.WorkItem) bool { return len(item.Context) > 0 },
}

// unusualKeywords in a title signal experimental or non-standard work and
// bump the score by two.
var unusualKeywords = []string{
	"experimental",
	"prototype",
	"unusual",
	"non-standard",
	"custom",
	"special construction",
	"pilot",
	"atypical",
}

// tierTable maps a score ceiling to a tier. Single edit point for tier
// thresholds; entries must be ordered by ascending ceiling.
var tierTable = []struct {
	ceiling int
	tier    analysis.Tier
}{
	{1, analysis.TierSimple},
	{3, analysis.TierStandard},
	{6, analysis.TierComplex},
	{MaxScore, analysis.TierCreative},
}

// Classify scores the item and returns its tier.
func Classify(item analysis.WorkItem) analysis.Tier {
	return tierFor(Score(item))
}

// Score computes the additive complexity score in [0, MaxScore]. Each
// factor is computed independently and summed.
func Score(item analysis.WorkItem) int {
	return rowCountFactor(len(item.Rows)) +
		completenessFactor(item) +
		keywordFactor(item.Title) +
		contextRichnessFactor(len(item.Context))
}

func tierFor(score int) analysis.Tier {
	for _, entry := range tierTable {
		if score <= entry.ceiling {
			return entry.tier
		}
	}
	return analysis.TierCreative
}

func rowCountFactor(rows int) int {
	switch {
	case rows <= 1:
		return 0
	case rows <= 5:
		return 1
	case rows <= 15:
		return 2
	case rows <= 30:
		return 3
	default:
		return 4
	}
}

// completenessFactor averages the fraction of required fields present with
// the context-field richness (capped at five fields) and maps the result
// onto 0..2, lower meaning more complete.
func completenessFactor(item analysis.WorkItem) int {
	present := 0
	for _, check := range requiredFields {
		if check(item) {
			present++
		}
	}
	fieldRatio := float64(present) / float64(len(requiredFields))

	ctxRatio := float64(len(item.Context)) / 5
	if ctxRatio > 1 {
		ctxRatio = 1
	}

	completeness := (fieldRatio + ctxRatio) / 2
	switch {
	case completeness >= 0.8:
		return 0
	case completeness >= 0.6:
		return 1
	default:
		return 2
	}
}

func keywordFactor(title string) int {
	lower := strings.ToLower(title)
	for _, kw := range unusualKeywords {
		if strings.Contains(lower, kw) {
			return 2
		}
	}
	return 0
}

func contextRichnessFactor(fields int) int {
	if fields >= 3 {
		return 0
	}
	return 1
}
