package canopy

import (
	"sort"

	"github.com/canopyml/canopy/feature"
)

/*
FeatureImportance is the aggregated contribution of one feature to a
forest: the number of splits made on it across all trees and its
total score reduction normalized to 100 for the most important
feature.
*/
type FeatureImportance struct {
	FeatureIndex int
	Name         string
	Score        float64
	Count        int
}

/*
Importances aggregates the split contributions of every feature
across the forest's trees. The returned slice covers the features of
the definition except the predicted one, ordered by feature name.
*/
func (f *Forest) Importances(definition feature.Definition) []FeatureImportance {
	scores := make([]float64, len(definition))
	counts := make([]int, len(definition))
	for _, t := range f.Trees {
		for i, importance := range t.Importance {
			if i < len(definition) {
				scores[i] += importance.Score
				counts[i] += importance.Count
			}
		}
	}
	var max float64
	for _, score := range scores {
		if score > max {
			max = score
		}
	}
	importances := make([]FeatureImportance, 0, len(definition)-1)
	for i, descriptor := range definition {
		if i == f.TargetIndex {
			continue
		}
		normalized := 0.0
		if max > 0 {
			normalized = 100 * scores[i] / max
		}
		importances = append(importances, FeatureImportance{
			FeatureIndex: i,
			Name:         descriptor.Name,
			Score:        normalized,
			Count:        counts[i],
		})
	}
	sort.Slice(importances, func(a, b int) bool {
		return importances[a].Name < importances[b].Name
	})
	return importances
}
