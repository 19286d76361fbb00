package lexicon

// Overlap is the number of verb titles shared by a and b. Non-verbs never
// count towards overlap.
func Overlap(a, b Category) int {
	set := make(map[string]bool, len(a.Verbs))
	for _, v := range uniqueLower(a.Verbs) {
		set[v] = true
	}
	n := 0
	for _, v := range uniqueLower(b.Verbs) {
		if set[v] {
			n++
		}
	}
	return n
}

// DiagonalCount is the number of verbs of cats[i] that belong to no other
// category in cats.
func DiagonalCount(cats []Category, i int) int {
	others := map[string]bool{}
	for j, c := range cats {
		if j == i {
			continue
		}
		for _, v := range uniqueLower(c.Verbs) {
			others[v] = true
		}
	}
	n := 0
	for _, v := range uniqueLower(cats[i].Verbs) {
		if !others[v] {
			n++
		}
	}
	return n
}

// LegacyDiagonal reproduces the historical chart value for cats[i]: the
// negated sum of its overlaps with every other category. It is negative
// whenever any overlap exists and is kept only for comparing against old
// exports; DiagonalCount is the diagonal used by OverlapMatrix.
func LegacyDiagonal(cats []Category, i int) int {
	total := 0
	for j, c := range cats {
		if j != i {
			total -= Overlap(cats[i], c)
		}
	}
	return total
}

// TotalOverlap is the number of shared verb memberships across unordered
// category pairs.
func TotalOverlap(cats []Category) int {
	sum := 0
	for i := range cats {
		for j := range cats {
			if i != j {
				sum += Overlap(cats[i], cats[j])
			}
		}
	}
	return sum / 2
}

// Sizes returns the verb count of each category.
func Sizes(cats []Category) []int {
	out := make([]int, len(cats))
	for i, c := range cats {
		out[i] = len(uniqueLower(c.Verbs))
	}
	return out
}

type Matrix struct {
	Labels       []string `json:"labels"`
	Levels       []int    `json:"levels"`
	Sizes        []int    `json:"sizes"`
	Cells        [][]int  `json:"cells"`
	TotalOverlap int      `json:"total_overlap"`

	// LegacyDiagonal holds LegacyDiagonal per row, for comparing against
	// exports made before the diagonal became an exclusive count.
	LegacyDiagonal []int `json:"legacy_diagonal"`
}

// OverlapMatrix builds the symmetric category x category matrix: cell
// (i, j) is Overlap for i != j and DiagonalCount on the diagonal.
func (l *Lexicon) OverlapMatrix() Matrix {
	cats := l.categories
	m := Matrix{
		Labels:       make([]string, len(cats)),
		Levels:       make([]int, len(cats)),
		Sizes:        Sizes(cats),
		Cells:        make([][]int, len(cats)),
		TotalOverlap: TotalOverlap(cats),

		LegacyDiagonal: make([]int, len(cats)),
	}
	for i, c := range cats {
		m.Labels[i] = c.Title
		m.Levels[i] = c.Level
		m.LegacyDiagonal[i] = LegacyDiagonal(cats, i)
		m.Cells[i] = make([]int, len(cats))
		for j := range cats {
			if i == j {
				m.Cells[i][j] = DiagonalCount(cats, i)
			} else {
				m.Cells[i][j] = Overlap(c, cats[j])
			}
		}
	}
	return m
}
