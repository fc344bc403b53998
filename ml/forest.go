package ml

import "errors"

// RandomForest predicts by majority vote over its trees. Ties break toward
// the lower label, which keeps binary output deterministic.
type RandomForest struct {
	Trees []*DecisionTree
}

func (rf *RandomForest) Predict(row []float64) (int, error) {
	if len(rf.Trees) == 0 {
		return 0, errors.New("forest has no trees")
	}
	votes := make(map[int]int)
	for _, tree := range rf.Trees {
		label, err := tree.Predict(row)
		if err != nil {
			return 0, err
		}
		votes[label]++
	}
	best := 0
	bestCount := -1
	for label, count := range votes {
		if count > bestCount || (count == bestCount && label < best) {
			best = label
			bestCount = count
		}
	}
	return best, nil
}
