package catalog

import "sort"

// Stats is the summary the CLI's --show-stats flag prints and the engine
// exposes programmatically (§6's dataset_stats()).
type Stats struct {
	TotalFiles      int
	TotalSubjects   int
	FilesByDatatype map[string]int
	Subjects        []string
	Datatypes       []string
}

// Stats computes dataset-wide aggregates over the built index. It never
// touches the filesystem again — everything it reports was captured at
// build time.
func (idx *Index) Stats() Stats {
	subjects := map[string]bool{}
	byDatatype := map[string]int{}

	for _, r := range idx.Records {
		if sub, ok := r.SubjectToken(); ok {
			subjects[sub] = true
		}
		if r.Datatype != "" {
			byDatatype[r.Datatype]++
		}
	}

	return Stats{
		TotalFiles:      len(idx.Records),
		TotalSubjects:   len(subjects),
		FilesByDatatype: byDatatype,
		Subjects:        sortedKeys(subjects),
		Datatypes:       sortedIntKeys(byDatatype),
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedIntKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
