package ml

import "errors"

// DecisionTree is a flat node array. Index 0 is the root; children are
// referenced by index into the same array.
type DecisionTree struct {
	Nodes []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (dt *DecisionTree) Predict(row []float64) (int, error) {
	if len(dt.Nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(row) {
			return 0, errors.New("feature index out of range")
		}
		if row[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for _, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.LeftChild < 0 || node.LeftChild >= len(dt.Nodes) ||
			node.RightChild < 0 || node.RightChild >= len(dt.Nodes) {
			return errors.New("tree child index out of range")
		}
	}
	return nil
}
