package lexicon

type Stats struct {
	NumCategories     int `json:"num_categories"`
	NumVerbs          int `json:"num_verbs"`
	NumNonVerbs       int `json:"num_non_verbs"`
	NumElements       int `json:"num_elements"`
	NumUniqueElements int `json:"num_unique_elements"`
}

type ElementCount struct {
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Verbs    int    `json:"verbs"`
	NonVerbs int    `json:"non_verbs"`
	Elements int    `json:"elements"`
}

// Stats summarises the taxonomy. Elements count verbs and non-verbs per
// category membership; unique elements count distinct titles.
func (l *Lexicon) Stats() Stats {
	s := Stats{
		NumCategories: len(l.categories),
		NumVerbs:      len(l.byVerb),
		NumNonVerbs:   len(l.byNonVerb),
	}
	unique := map[string]bool{}
	for _, c := range l.categories {
		verbs := uniqueLower(c.Verbs)
		nonVerbs := uniqueLower(c.NonVerbs)
		s.NumElements += len(verbs) + len(nonVerbs)
		for _, v := range verbs {
			unique["v:"+v] = true
		}
		for _, nv := range nonVerbs {
			unique["n:"+nv] = true
		}
	}
	s.NumUniqueElements = len(unique)
	return s
}

// ElementCounts lists per-category sizes ordered by level.
func (l *Lexicon) ElementCounts() []ElementCount {
	out := make([]ElementCount, 0, len(l.categories))
	for _, c := range l.categories {
		v := len(uniqueLower(c.Verbs))
		nv := len(uniqueLower(c.NonVerbs))
		out = append(out, ElementCount{Title: c.Title, Level: c.Level, Verbs: v, NonVerbs: nv, Elements: v + nv})
	}
	return out
}
