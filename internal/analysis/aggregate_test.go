package analysis

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
)

func TestCategoryOccurrenceCountsOutcomes(t *testing.T) {
	outcomes := [][]int{
		{3, 0, 1},
		{0, 0, 2},
		{1, 0, 0},
	}
	if diff := cmp.Diff([]int{2, 0, 2}, CategoryOccurrence(outcomes, 3)); diff != "" {
		t.Fatalf("occurrence (-want +got):\n%s", diff)
	}
}

func TestDiversityHistogramPartitions(t *testing.T) {
	outcomes := [][]int{
		{0, 0, 0},
		{1, 1, 1},
		{2, 0, 0},
		{0, 5, 1},
		{1, 0, 0},
	}
	hist := DiversityHistogram(outcomes, 3)
	if diff := cmp.Diff([]int{1, 2, 1, 1}, hist); diff != "" {
		t.Fatalf("histogram (-want +got):\n%s", diff)
	}
	sum := 0
	for _, n := range hist {
		sum += n
	}
	if sum != len(outcomes) {
		t.Fatalf("histogram sums to %d, want %d", sum, len(outcomes))
	}
}

func TestAverages(t *testing.T) {
	got, err := Averages(61, []int{0, 6, 11, 3, 3, 0, 0}, 23, EmptyStrandError)
	if err != nil {
		t.Fatalf("Averages: %v", err)
	}
	if diff := cmp.Diff(Average{Verbs: 2.65, Categories: 2.13}, got); diff != "" {
		t.Fatalf("averages (-want +got):\n%s", diff)
	}
}

func TestAveragesEmptyStrand(t *testing.T) {
	_, err := Averages(0, []int{0, 0}, 0, EmptyStrandError)
	if !errors.Is(err, domain.ErrEmptyStrand) {
		t.Fatalf("expected empty strand error, got %v", err)
	}
	got, err := Averages(0, []int{0, 0}, 0, EmptyStrandZero)
	if err != nil {
		t.Fatalf("zero policy: %v", err)
	}
	if got != (Average{}) {
		t.Fatalf("zero policy returned %+v", got)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		2.652173913: 2.65,
		2.130434782: 2.13,
		1.005:       1.0,
		0.125:       0.13,
		3:           3,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v)=%v want %v", in, got, want)
		}
	}
}

func TestParseEmptyStrandPolicy(t *testing.T) {
	if ParseEmptyStrandPolicy(" Zero ") != EmptyStrandZero {
		t.Fatalf("zero not parsed")
	}
	if ParseEmptyStrandPolicy("") != EmptyStrandError {
		t.Fatalf("default should be error")
	}
}
