package analysis

import (
	"math"
	"strings"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
)

// EmptyStrandPolicy decides what the average stage does for a strand with
// no learning outcomes.
type EmptyStrandPolicy string

const (
	EmptyStrandError EmptyStrandPolicy = "error"
	EmptyStrandZero  EmptyStrandPolicy = "zero"
)

func ParseEmptyStrandPolicy(s string) EmptyStrandPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(EmptyStrandZero)) {
		return EmptyStrandZero
	}
	return EmptyStrandError
}

func Diversity(hits []int) int {
	n := 0
	for _, h := range hits {
		if h > 0 {
			n++
		}
	}
	return n
}

// CategoryOccurrence counts, per category, the outcomes with a positive
// hit count. It counts outcomes, not tokens.
func CategoryOccurrence(outcomes [][]int, numCategories int) []int {
	out := make([]int, numCategories)
	for _, hits := range outcomes {
		for i := 0; i < numCategories && i < len(hits); i++ {
			if hits[i] > 0 {
				out[i]++
			}
		}
	}
	return out
}

// DiversityHistogram returns numCategories+1 buckets; bucket k holds the
// number of outcomes reaching exactly k categories. The buckets sum to
// len(outcomes).
func DiversityHistogram(outcomes [][]int, numCategories int) []int {
	out := make([]int, numCategories+1)
	for _, hits := range outcomes {
		d := Diversity(hits)
		if d > numCategories {
			d = numCategories
		}
		out[d]++
	}
	return out
}

type Average struct {
	Verbs      float64 `json:"verbs"`
	Categories float64 `json:"categories"`
}

// Averages computes the strand averages from per-outcome hit totals and
// the diversity histogram, both rounded to two places.
func Averages(totalHits int, histogram []int, numOutcomes int, policy EmptyStrandPolicy) (Average, error) {
	if numOutcomes == 0 {
		if policy == EmptyStrandZero {
			return Average{}, nil
		}
		return Average{}, domain.NewError(domain.CodeEmptyStrand, "analysis.averages",
			"strand has no learning outcomes", nil)
	}
	weighted := 0
	for k, n := range histogram {
		weighted += k * n
	}
	return Average{
		Verbs:      Round2(float64(totalHits) / float64(numOutcomes)),
		Categories: Round2(float64(weighted) / float64(numOutcomes)),
	}, nil
}

// Round2 rounds half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Summary is every strand-level aggregate derived from outcome results.
type Summary struct {
	NumOutcomes int     `json:"num_outcomes"`
	Occurrence  []int   `json:"occurrence"`
	Histogram   []int   `json:"histogram"`
	Average     Average `json:"average"`
}

// Summarize runs the occurrence, diversity and average computations in
// order over one strand's outcomes.
func Summarize(results []OutcomeResult, numCategories int, policy EmptyStrandPolicy) (Summary, error) {
	hits := make([][]int, len(results))
	total := 0
	for i, r := range results {
		hits[i] = r.Hits
		total += r.Total()
	}
	s := Summary{
		NumOutcomes: len(results),
		Occurrence:  CategoryOccurrence(hits, numCategories),
		Histogram:   DiversityHistogram(hits, numCategories),
	}
	avg, err := Averages(total, s.Histogram, len(results), policy)
	if err != nil {
		return s, err
	}
	s.Average = avg
	return s, nil
}
